package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the lpm banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []termenv.Style{
		termenv.String("  _").Foreground(p.Color("#818cf8")),
		termenv.String(" | |_ __  _ __ ___").Foreground(p.Color("#a78bfa")),
		termenv.String(" | | '_ \\| '_ ` _ \\").Foreground(p.Color("#c084fc")),
		termenv.String(" | | |_) | | | | | |").Foreground(p.Color("#e879f9")),
		termenv.String(" |_| .__/|_| |_| |_|").Foreground(p.Color("#f472b6")),
		termenv.String("   |_|  lattice paths v" + version).Foreground(p.Color("#fb7185")),
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
}
