package domain_test

import (
	"testing"

	"github.com/aretw0/lpm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeBetween_ClosedLoop(t *testing.T) {
	poly, err := domain.ComposeBetween("0011", "0101")
	require.NoError(t, err)

	assert.Equal(t, poly[0], poly[len(poly)-1])
	assert.Greater(t, len(poly), 4)
	for i := 1; i < len(poly); i++ {
		assert.NotEqual(t, poly[i-1], poly[i], "consecutive duplicate at %d", i)
	}

	assert.Equal(t, domain.Polygon{
		domain.Pt(0, 0), domain.Pt(1, 0), domain.Pt(1, 1), domain.Pt(2, 1), domain.Pt(2, 2),
		domain.Pt(2, 1), domain.Pt(2, 0), domain.Pt(1, 0), domain.Pt(0, 0),
	}, poly)
}

func TestComposeBetween_EndpointMismatch(t *testing.T) {
	poly, err := domain.ComposeBetween("0", "11")
	assert.Nil(t, poly)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "same endpoint")
}

func TestComposeBetween_InvalidBits(t *testing.T) {
	_, err := domain.ComposeBetween("01", "1x")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "upper path")

	_, err = domain.ComposeBetween("x", "1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "lower path")
}

func TestComposeBetween_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		bits string
		want domain.Polygon
	}{
		{"Empty", "", domain.Polygon{domain.Pt(0, 0)}},
		{"Single Step", "0", domain.Polygon{domain.Pt(0, 0), domain.Pt(1, 0), domain.Pt(0, 0)}},
		{"Identical", "01", domain.Polygon{domain.Pt(0, 0), domain.Pt(1, 0), domain.Pt(1, 1), domain.Pt(1, 0), domain.Pt(0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poly, err := domain.ComposeBetween(tt.bits, tt.bits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, poly)
			assert.NoError(t, poly.Validate())
		})
	}
}

func TestComposeBetween_AlwaysValid(t *testing.T) {
	pairs := [][2]string{
		{"000111", "111000"},
		{"001011", "010101"},
		{"0110", "1001"},
		{"0011", "0011"},
		{"10", "01"},
	}
	for _, p := range pairs {
		poly, err := domain.ComposeBetween(p[0], p[1])
		require.NoError(t, err, p)
		assert.NoError(t, poly.Validate(), p)
	}
}

func TestComposeBetween_DoesNotAlias(t *testing.T) {
	lower, err := domain.ParsePath("0011")
	require.NoError(t, err)
	upper, err := domain.ParsePath("0101")
	require.NoError(t, err)

	poly, err := domain.Between(lower, upper)
	require.NoError(t, err)

	poly[1] = domain.Pt(7, 7)
	assert.Equal(t, domain.Pt(1, 0), upper.Coords[1])
}

func TestBetween_RejectsUnparsedPaths(t *testing.T) {
	valid, err := domain.ParsePath("01")
	require.NoError(t, err)

	tests := []struct {
		name         string
		lower, upper *domain.LatticePath
		field        string
	}{
		{"Nil Lower", nil, valid, "lower"},
		{"Nil Upper", valid, nil, "upper"},
		{"Zero Lower", &domain.LatticePath{}, valid, "lower"},
		{"Zero Upper", valid, &domain.LatticePath{Bits: "01"}, "upper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var poly domain.Polygon
			require.NotPanics(t, func() { poly, err = domain.Between(tt.lower, tt.upper) })
			assert.Nil(t, poly)
			require.ErrorIs(t, err, domain.ErrInvalidInput)

			var inErr *domain.InputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, tt.field, inErr.Field)
		})
	}
}

func TestPolygon_Validate(t *testing.T) {
	err := domain.Polygon{}.Validate()
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

	err = domain.Polygon{domain.Pt(0, 0), domain.Pt(1, 0)}.Validate()
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

	err = domain.Polygon{domain.Pt(0, 0), domain.Pt(1, 0), domain.Pt(1, 0), domain.Pt(0, 0)}.Validate()
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
}
