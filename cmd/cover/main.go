// Command cover renders the generated placeholder cover for a title and
// author, for checking palettes without running the server.
package main

import (
	"flag"
	"fmt"
	"os"

	"paperpharmacy/internal/cover"
	"paperpharmacy/internal/logging"
)

func main() {
	var (
		title  = flag.String("title", "", "Book title")
		author = flag.String("author", "", "Book author")
		size   = flag.String("size", "large", "large or small")
		out    = flag.String("out", "", "Output file (stdout when empty)")
		info   = flag.Bool("info", false, "Print the selected palette and pattern instead of SVG")
	)
	flag.Parse()

	logging.Init(logging.Config{Level: "warn", Format: "console"})

	sel := cover.Select(*title, *author)
	if *info {
		fmt.Printf("hash=%d palette=%q pattern=%q from=%s to=%s text=%s\n",
			sel.Hash, sel.Palette.Name, sel.Pattern.Name, sel.Palette.From, sel.Palette.To, sel.Palette.Text)
		return
	}

	svg := sel.SVG(cover.ParseSize(*size))
	if *out == "" {
		fmt.Print(svg)
		return
	}
	if err := os.WriteFile(*out, []byte(svg), 0o644); err != nil {
		logging.Fatal().Err(err).Str("out", *out).Msg("cannot write cover")
	}
	logging.Info().Str("out", *out).Str("palette", sel.Palette.Name).Msg("cover written")
}
