package graph

import (
	"strings"

	"github.com/aretw0/lpm/pkg/domain"
)

// Overlay contains extra points to emphasize on the drawing.
type Overlay struct {
	Highlight []domain.Point
}

// Glyphs used by DrawGrid.
const (
	GlyphLattice   = '.'
	GlyphVertex    = 'o'
	GlyphHighlight = '*'
	GlyphEast      = '-'
	GlyphNorth     = '|'
)

// DrawGrid renders a polyline of lattice points as text, north up.
// Lattice point (x,y) sits at column 2x of row 2(maxY-y); the cells between
// neighbours carry the edges. Only axis-aligned segments are drawn.
// Negative coordinates are not supported and are skipped.
func DrawGrid(points []domain.Point, overlay *Overlay) string {
	maxX, maxY := 0, 0
	for _, p := range points {
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	width, height := 2*maxX+1, 2*maxY+1
	cells := make([][]rune, height)
	for r := range cells {
		cells[r] = []rune(strings.Repeat(" ", width))
		if r%2 == 0 {
			for c := 0; c < width; c += 2 {
				cells[r][c] = GlyphLattice
			}
		}
	}
	set := func(x2, y2 int, g rune) {
		row, col := 2*maxY-y2, x2
		if row < 0 || row >= height || col < 0 || col >= width {
			return
		}
		cells[row][col] = g
	}

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		switch {
		case a.Y == b.Y:
			for x2 := 2*min(a.X, b.X) + 1; x2 < 2*max(a.X, b.X); x2++ {
				set(x2, 2*a.Y, GlyphEast)
			}
		case a.X == b.X:
			for y2 := 2*min(a.Y, b.Y) + 1; y2 < 2*max(a.Y, b.Y); y2++ {
				set(2*a.X, y2, GlyphNorth)
			}
		}
	}
	for _, p := range points {
		set(2*p.X, 2*p.Y, GlyphVertex)
	}
	if overlay != nil {
		for _, p := range overlay.Highlight {
			set(2*p.X, 2*p.Y, GlyphHighlight)
		}
	}

	lines := make([]string, height)
	for r, row := range cells {
		lines[r] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n") + "\n"
}
