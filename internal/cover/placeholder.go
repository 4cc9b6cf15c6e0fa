package cover

import (
	"fmt"
	"html"
	"strings"
)

// Size is the rendered cover size.
type Size string

const (
	SizeLarge Size = "large"
	SizeSmall Size = "small"
)

// ParseSize returns SizeSmall for "small" and SizeLarge otherwise.
func ParseSize(s string) Size {
	if strings.EqualFold(s, string(SizeSmall)) {
		return SizeSmall
	}
	return SizeLarge
}

type dimensions struct {
	width, height int
	tile          int
	padding       int
	titleFont     int
	authorFont    int
	showRule      bool
}

func (s Size) dimensions() dimensions {
	if s == SizeSmall {
		return dimensions{width: 56, height: 80, tile: 10, padding: 4, titleFont: 10, authorFont: 8}
	}
	return dimensions{width: 192, height: 288, tile: 20, padding: 16, titleFont: 18, authorFont: 14, showRule: true}
}

// SVG renders the placeholder cover for the selection.
func (sel Selection) SVG(size Size) string {
	d := size.dimensions()
	p := sel.Palette

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="%s">`,
		d.width, d.height, d.width, d.height, html.EscapeString(sel.Title+" - "+sel.Author))
	b.WriteString(`<defs>`)
	fmt.Fprintf(&b, `<linearGradient id="bg" x1="0" y1="0" x2="1" y2="1"><stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></linearGradient>`,
		p.From, p.To)
	fmt.Fprintf(&b, `<pattern id="tile" width="%d" height="%d" patternUnits="userSpaceOnUse"><g transform="scale(%g)" fill="#ffffff" fill-opacity="0.3">%s</g></pattern>`,
		d.tile, d.tile, float64(d.tile)/20, sel.Pattern.Tile)
	b.WriteString(`</defs>`)

	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="url(#bg)"/>`, d.width, d.height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="url(#tile)" opacity="0.3"/>`, d.width, d.height)
	// spine
	fmt.Fprintf(&b, `<rect width="%g" height="%d" fill="#000000" fill-opacity="0.1"/>`, float64(d.width)*0.04, d.height)

	cx := d.width / 2
	lines := wrap(sel.Title, (d.width-2*d.padding)/d.titleFont+1)
	lineHeight := d.titleFont + d.titleFont/4
	blockHeight := len(lines)*lineHeight + d.authorFont + d.padding/2
	y := (d.height-blockHeight)/2 + d.titleFont

	fmt.Fprintf(&b, `<g fill="%s" text-anchor="middle" font-family="Cafe24Ssurround, Pretendard, sans-serif">`, p.Text)
	for _, line := range lines {
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="%d" font-weight="bold">%s</text>`, cx, y, d.titleFont, html.EscapeString(line))
		y += lineHeight
	}
	if d.showRule {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="1" fill="%s" fill-opacity="0.5"/>`, d.width/4, y-lineHeight/2, d.width/2, p.Text)
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="%d" opacity="0.9">%s</text>`, cx, y+d.padding/2, d.authorFont, html.EscapeString(sel.Author))
	b.WriteString(`</g></svg>`)
	return b.String()
}

// wrap splits text into lines of at most width runes, breaking on
// spaces where possible. Korean titles often have no spaces, so long
// words are cut.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) > width {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		for len(w) > width-len(cur) && len(cur) < width {
			n := width - len(cur)
			cur = append(cur, w[:n]...)
			lines = append(lines, string(cur))
			cur = cur[:0]
			w = w[n:]
		}
		cur = append(cur, w...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
