// Package mermaid turns an edge snapshot into Mermaid flowchart source and
// derives the raster size requested from the renderer.
package mermaid

import (
	"math"
	"strings"

	"github.com/specialistvlad/graphvisgo/internal/graph"
)

const (
	// Header is the first line of every generated diagram.
	Header = "graph TD"

	// Arrow joins the endpoints of an edge line in Mermaid syntax.
	Arrow = "-->"

	// BaseSize is the width and height requested for graphs up to
	// EdgesPerBase edges.
	BaseSize = 4000

	// EdgesPerBase is the edge count at which scaling starts.
	EdgesPerBase = 50
)

// Source renders the edges as a top-down Mermaid flowchart.
func Source(edges []graph.Edge) string {
	var sb strings.Builder
	sb.WriteString(Header)
	for _, e := range edges {
		sb.WriteString("\n  ")
		sb.WriteString(e.Left)
		sb.WriteString(" " + Arrow + " ")
		sb.WriteString(e.Right)
	}
	return sb.String()
}

// CountEdges counts the lines of src that describe an edge.
func CountEdges(src string) int {
	n := 0
	for _, line := range strings.Split(src, "\n") {
		if strings.Contains(line, Arrow) {
			n++
		}
	}
	return n
}

// OutputSize returns the square side length for a diagram with edgeCount
// edges: BaseSize scaled by max(1, sqrt(edgeCount/EdgesPerBase)).
func OutputSize(edgeCount int) int {
	scale := math.Max(1.0, math.Sqrt(float64(edgeCount)/EdgesPerBase))
	return int(math.Round(BaseSize * scale))
}
