package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lpm/internal/presentation/graph"
	"github.com/aretw0/lpm/internal/sanitize"
	"github.com/aretw0/lpm/pkg/domain"
)

// InspectMarkdown describes a parsed path as a markdown report with a
// drawing of the path. Inside corners are marked with '*'.
func InspectMarkdown(name string, lp *domain.LatticePath) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Path `%s`\n\n", name)
	fmt.Fprintf(&sb, "Macro name: `%s`\n\n", sanitize.Name(name))

	sb.WriteString("| Property | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Bits | `%s` |\n", orDash(lp.Bits))
	fmt.Fprintf(&sb, "| Steps | %d |\n", len(lp.Bits))
	fmt.Fprintf(&sb, "| Grid size | %s |\n", lp.GridSize())
	fmt.Fprintf(&sb, "| Upmarks | %s |\n", ints(lp.Upmarks))
	fmt.Fprintf(&sb, "| Direction changes | %s |\n", ints(lp.Corners))
	fmt.Fprintf(&sb, "| Inside corners | %s |\n", ints(lp.InsideCorners))
	sb.WriteString("\n")

	if len(lp.RowExtent) > 0 {
		sb.WriteString("## Row extents\n\n| Row | First x |\n|---|---|\n")
		rows := make([]int, 0, len(lp.RowExtent))
		for row := range lp.RowExtent {
			rows = append(rows, row)
		}
		sort.Ints(rows)
		for _, row := range rows {
			fmt.Fprintf(&sb, "| %d | %d |\n", row, lp.RowExtent[row])
		}
		sb.WriteString("\n")
	}

	highlight := make([]domain.Point, len(lp.InsideCorners))
	for i, idx := range lp.InsideCorners {
		highlight[i] = lp.Coords[idx]
	}
	sb.WriteString("## Drawing\n\n```text\n")
	sb.WriteString(graph.DrawGrid(lp.Coords, &graph.Overlay{Highlight: highlight}))
	sb.WriteString("```\n")
	return sb.String()
}

// RegionMarkdown describes a between-region polygon.
func RegionMarkdown(lower, upper string, poly domain.Polygon) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Region `%s` / `%s`\n\n", lower, upper)
	fmt.Fprintf(&sb, "Boundary (%d points): `%s`\n\n", len(poly), formatPoints(poly))
	sb.WriteString("```text\n")
	sb.WriteString(graph.DrawGrid(poly, nil))
	sb.WriteString("```\n")
	return sb.String()
}

func ints(xs []int) string {
	if len(xs) == 0 {
		return "-"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}

func formatPoints(points []domain.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
