package hashing

import (
	"math"
	"testing"

	"github.com/aretw0/lpm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyOf_DeterministicForEquivalentObjects(t *testing.T) {
	a := map[string]any{"name": "demo", "coords": []domain.Point{domain.Pt(0, 0), domain.Pt(1, 0)}, "flags": []int{1, 2}}
	b := map[string]any{"flags": []int{1, 2}, "coords": [][2]int{{0, 0}, {1, 0}}, "name": "demo"}

	ka, err := KeyOf(a)
	require.NoError(t, err)
	kb, err := KeyOf(b)
	require.NoError(t, err)

	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 64)
}

func TestKeyOf_StructOrderIndependent(t *testing.T) {
	type ab struct {
		A string `json:"a"`
		B string `json:"b"`
	}
	type ba struct {
		B string `json:"b"`
		A string `json:"a"`
	}

	k1, err := KeyOf(ab{A: "x", B: "y"})
	require.NoError(t, err)
	k2, err := KeyOf(ba{B: "y", A: "x"})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestCanonJSON(t *testing.T) {
	data, err := CanonJSON(map[string]any{"z": 1, "a": "<é>", "m": []any{true, nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<é>","m":[true,null],"z":1}`, string(data))
}

func TestCanonJSON_RejectsNaN(t *testing.T) {
	_, err := CanonJSON(map[string]float64{"x": math.NaN()})
	assert.Error(t, err)
}

func TestKeyOf_DiffersOnContent(t *testing.T) {
	k1, err := KeyOf(map[string]string{"bits": "01"})
	require.NoError(t, err)
	k2, err := KeyOf(map[string]string{"bits": "10"})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}
