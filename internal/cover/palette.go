// Package cover picks and renders book covers.
//
// A card first tries real cover images through the fallback chain in
// resolver.go. When nothing loads, the placeholder visual is generated
// deterministically from the book's title and author.
package cover

const (
	// UntitledLabel replaces an empty title.
	UntitledLabel = "제목 미정"
	// UnknownAuthorLabel replaces an empty author.
	UnknownAuthorLabel = "작자 미상"
)

// Palette is a two-stop gradient plus a legible text color.
type Palette struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// Palettes is the fixed palette set. Order is part of the selection
// contract: reordering changes every generated cover.
var Palettes = []Palette{
	{Name: "Cotton Candy", From: "#ff9a9e", To: "#fecfef", Text: "#5e3449"},
	{Name: "Gentle Sky", From: "#a1c4fd", To: "#c2e9fb", Text: "#2c3e50"},
	{Name: "Ocean Mist", From: "#84fab0", To: "#8fd3f4", Text: "#13547a"},
	{Name: "Warm Sunset", From: "#f6d365", To: "#fda085", Text: "#8c520a"},
	{Name: "Fresh Lime", From: "#d4fc79", To: "#96e6a1", Text: "#2c522c"},
	{Name: "Lavender Dream", From: "#c3a3f4", To: "#fbc2eb", Text: "#4a2c52"},
	{Name: "Soft Peach", From: "#fccb90", To: "#d57eeb", Text: "#522c4a"},
	{Name: "Deep Ocean", From: "#48c6ef", To: "#6f86d6", Text: "#073352"},
	{Name: "Raspberry Fizz", From: "#ff758c", To: "#ff7eb3", Text: "#6d1839"},
	{Name: "Lush Meadow", From: "#56ab2f", To: "#a8e063", Text: "#193a0d"},
	{Name: "Galaxy Night", From: "#30cfd0", To: "#330867", Text: "#ffffff"},
	{Name: "Royal Amethyst", From: "#20002c", To: "#cbb4d4", Text: "#ffffff"},
	{Name: "Starry Night", From: "#1e3c72", To: "#2a5298", Text: "#ffffff"},
	{Name: "Rose Petals", From: "#ffdde1", To: "#ee9ca7", Text: "#7d3c47"},
	{Name: "Electric Pop", From: "#00c3ff", To: "#ffff1c", Text: "#004c66"},
}

// Pattern is a tileable SVG path drawn over the gradient.
type Pattern struct {
	Name string `json:"name"`
	// Tile is SVG markup for one 20x20 tile, filled with currentColor.
	Tile string `json:"-"`
}

// Patterns is the fixed background pattern set.
var Patterns = []Pattern{
	{Name: "plus", Tile: `<path d="M2 9h6V3h2v6h6v2H10v6H8V11H2V9z"/>`},
	{Name: "dots", Tile: `<circle cx="3" cy="3" r="3"/><circle cx="13" cy="13" r="3"/>`},
	{Name: "zigzag", Tile: `<path d="M0 0h20L0 20zM20 20H0L20 0z"/>`},
}

// Selection describes the placeholder to render for one identity.
type Selection struct {
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Hash    int64   `json:"hash"`
	Palette Palette `json:"palette"`
	Pattern Pattern `json:"pattern"`
}

// Hash is a 31-multiplier rolling hash over the code points of s,
// wrapped to a signed 32-bit value after every step.
func Hash(s string) int32 {
	var h int32
	for _, r := range s {
		h = (h << 5) - h + int32(r)
	}
	return h
}

// Select maps a title and author to a palette and pattern. Both picks
// come from the same hash value, so they are correlated per identity.
func Select(title, author string) Selection {
	if title == "" {
		title = UntitledLabel
	}
	if author == "" {
		author = UnknownAuthorLabel
	}

	n := absHash(Hash(title + author))
	return Selection{
		Title:   title,
		Author:  author,
		Hash:    n,
		Palette: Palettes[n%int64(len(Palettes))],
		Pattern: Patterns[n%int64(len(Patterns))],
	}
}

// absHash widens before negating so math.MinInt32 stays non-negative.
func absHash(h int32) int64 {
	n := int64(h)
	if n < 0 {
		return -n
	}
	return n
}
