package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/lpm/internal/presentation/tui"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectMarkdown(t *testing.T) {
	lp, err := domain.ParsePath("0101")
	require.NoError(t, err)

	md := tui.InspectMarkdown("Demo Path", lp)
	assert.Contains(t, md, "# Path `Demo Path`")
	assert.Contains(t, md, "Macro name: `Demo_Path`")
	assert.Contains(t, md, "| Upmarks | 2, 4 |")
	assert.Contains(t, md, "| Direction changes | 1, 2, 3 |")
	assert.Contains(t, md, "| Inside corners | 1, 3 |")
	assert.Contains(t, md, "| 2 | 2 |")
	assert.Contains(t, md, "o-*\n")
}

func TestInspectMarkdown_Empty(t *testing.T) {
	lp, err := domain.ParsePath("")
	require.NoError(t, err)

	md := tui.InspectMarkdown("e", lp)
	assert.Contains(t, md, "| Bits | `-` |")
	assert.Contains(t, md, "| Upmarks | - |")
	assert.NotContains(t, md, "Row extents")
}

func TestRegionMarkdown(t *testing.T) {
	poly, err := domain.ComposeBetween("0011", "0101")
	require.NoError(t, err)

	md := tui.RegionMarkdown("L", "U", poly)
	assert.Contains(t, md, "Boundary (9 points): `(0,0) (1,0)")
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer("notty")
	require.NoError(t, err)

	out, err := render("# Title\n\nbody text\n")
	require.NoError(t, err)
	assert.Contains(t, out, "body text")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
