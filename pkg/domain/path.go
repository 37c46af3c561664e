package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step symbols of the encoding.
const (
	East  byte = '0'
	North byte = '1'
)

// Point is an integer lattice point.
// It serializes to JSON as an ordered pair [x, y].
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("point must be an [x, y] pair: %w", err)
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// LatticePath is an immutable monotone lattice path with derived annotations.
// Positions in Upmarks, Corners and InsideCorners are 1-based step indices.
type LatticePath struct {
	Bits          string      // Original step encoding
	Coords        []Point     // len(Bits)+1 points starting at (0,0)
	Upmarks       []int       // Positions of north steps
	Corners       []int       // Positions i where step i and step i+1 differ
	InsideCorners []int       // Corners where an east step is followed by a north step
	RowExtent     map[int]int // Row y (1..maxY) -> x where the path first reaches y
}

// Manifest is the stable, order-preserving serializable form of a path.
type Manifest struct {
	Name    string  `json:"name"`
	Bits    string  `json:"bits"`
	Coords  []Point `json:"coords"`
	Upmarks []int   `json:"upmarks"`
}

// ParsePath parses a step encoding into a LatticePath.
// Any symbol other than '0' or '1' fails with ErrInvalidInput before geometry is derived.
func ParsePath(bits string) (*LatticePath, error) {
	if i := strings.IndexFunc(bits, func(r rune) bool { return r != rune(East) && r != rune(North) }); i >= 0 {
		return nil, &InputError{Field: "bits", Reason: "must be a binary string of '0' and '1'", Value: bits}
	}

	x, y := 0, 0
	lp := &LatticePath{
		Bits:          bits,
		Coords:        make([]Point, 1, len(bits)+1),
		Upmarks:       []int{},
		Corners:       []int{},
		InsideCorners: []int{},
	}
	lp.Coords[0] = Pt(0, 0)

	var prev byte
	for i := 0; i < len(bits); i++ {
		pos := i + 1
		cur := bits[i]
		if cur == East {
			x++
		} else {
			y++
			lp.Upmarks = append(lp.Upmarks, pos)
		}
		lp.Coords = append(lp.Coords, Pt(x, y))

		if prev != 0 && prev != cur {
			lp.Corners = append(lp.Corners, pos-1)
			if prev == East && cur == North {
				lp.InsideCorners = append(lp.InsideCorners, pos-1)
			}
		}
		prev = cur
	}

	lp.RowExtent = rowExtent(lp.Coords, y)

	if err := lp.checkInvariants(); err != nil {
		return nil, err
	}
	return lp, nil
}

// rowExtent records, for every row 1..maxY, the x of the first coordinate on that row.
func rowExtent(coords []Point, maxY int) map[int]int {
	seen := make(map[int]int, maxY)
	for _, c := range coords {
		if c.Y <= 0 {
			continue
		}
		if _, ok := seen[c.Y]; !ok {
			seen[c.Y] = c.X
		}
	}

	ext := make(map[int]int, maxY)
	for row := 1; row <= maxY; row++ {
		// Unit north steps visit every row, so the zero default is unreachable for parsed input.
		ext[row] = seen[row]
	}
	return ext
}

func (lp *LatticePath) checkInvariants() error {
	if len(lp.Coords) == 0 || lp.Coords[0] != Pt(0, 0) {
		return &InvariantError{Invariant: "origin", Detail: "coords[0] must be (0,0)"}
	}
	if len(lp.Coords) != len(lp.Bits)+1 {
		return &InvariantError{
			Invariant: "length",
			Detail:    fmt.Sprintf("len(coords)=%d, want len(bits)+1=%d", len(lp.Coords), len(lp.Bits)+1),
		}
	}
	want := Pt(strings.Count(lp.Bits, string(East)), strings.Count(lp.Bits, string(North)))
	if got := lp.End(); got != want {
		return &InvariantError{Invariant: "endpoint", Detail: fmt.Sprintf("endpoint %s does not match step counts %s", got, want)}
	}
	return nil
}

// Start returns the first coordinate of the path.
func (lp *LatticePath) Start() Point {
	return lp.Coords[0]
}

// End returns the last coordinate of the path.
func (lp *LatticePath) End() Point {
	return lp.Coords[len(lp.Coords)-1]
}

// GridSize returns the number of east and north steps as a point.
func (lp *LatticePath) GridSize() Point {
	return lp.End()
}

// MaxRow returns the highest row reached by the path.
func (lp *LatticePath) MaxRow() int {
	return lp.End().Y
}

// Manifest returns the serializable form of the path under the given name.
func (lp *LatticePath) Manifest(name string) Manifest {
	coords := make([]Point, len(lp.Coords))
	copy(coords, lp.Coords)
	upmarks := make([]int, len(lp.Upmarks))
	copy(upmarks, lp.Upmarks)
	return Manifest{Name: name, Bits: lp.Bits, Coords: coords, Upmarks: upmarks}
}
