package domain

import "fmt"

// Polygon is a closed sequence of lattice points: the first point equals the
// last and no two consecutive points are equal.
type Polygon []Point

// ComposeBetween builds the boundary polygon of the region between a lower and
// an upper path. Both paths must start at (0,0) and end at the same point.
// The boundary runs along the upper path forward, back along the lower path,
// and closes at the origin. Identical paths yield a zero-area polygon.
func ComposeBetween(lowerBits, upperBits string) (Polygon, error) {
	lower, err := ParsePath(lowerBits)
	if err != nil {
		return nil, fmt.Errorf("lower path: %w", err)
	}
	upper, err := ParsePath(upperBits)
	if err != nil {
		return nil, fmt.Errorf("upper path: %w", err)
	}
	return Between(lower, upper)
}

// Between composes two already parsed paths. See ComposeBetween.
// A nil path or one without coordinates is rejected with ErrInvalidInput.
func Between(lower, upper *LatticePath) (Polygon, error) {
	if lower == nil || len(lower.Coords) == 0 {
		return nil, &InputError{Field: "lower", Reason: "path has no coordinates"}
	}
	if upper == nil || len(upper.Coords) == 0 {
		return nil, &InputError{Field: "upper", Reason: "path has no coordinates"}
	}
	if lower.End() != upper.End() {
		return nil, &InputError{
			Field:  "paths",
			Reason: "paths must share the same endpoint",
			Value:  fmt.Sprintf("%s vs %s", lower.End(), upper.End()),
		}
	}
	if lower.Start() != Pt(0, 0) || upper.Start() != Pt(0, 0) {
		return nil, &InputError{Field: "paths", Reason: "paths must start at (0,0)"}
	}

	n := len(lower.Coords)
	joined := make([]Point, 0, len(upper.Coords)+n)
	joined = append(joined, upper.Coords...)
	// Lower path reversed, without the shared endpoint and origin.
	for i := n - 2; i >= 1; i-- {
		joined = append(joined, lower.Coords[i])
	}
	joined = append(joined, upper.Coords[0])

	poly := make(Polygon, 0, len(joined))
	for _, p := range joined {
		if len(poly) > 0 && poly[len(poly)-1] == p {
			continue
		}
		poly = append(poly, p)
	}

	if err := poly.Validate(); err != nil {
		return nil, err
	}
	return poly, nil
}

// Validate checks that the polygon is closed and free of consecutive duplicates.
func (p Polygon) Validate() error {
	if len(p) == 0 {
		return &InvariantError{Invariant: "closed", Detail: "polygon is empty"}
	}
	if p[0] != p[len(p)-1] {
		return &InvariantError{Invariant: "closed", Detail: fmt.Sprintf("first %s != last %s", p[0], p[len(p)-1])}
	}
	for i := 1; i < len(p); i++ {
		if p[i] == p[i-1] {
			return &InvariantError{Invariant: "dedup", Detail: fmt.Sprintf("repeated point %s at %d", p[i], i)}
		}
	}
	return nil
}
