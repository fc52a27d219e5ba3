package scheduler

import (
	"context"

	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/surface"
)

// Source provides the graph snapshot captured when a render fires.
type Source interface {
	EnabledEdges() []graph.Edge
}

// Poster schedules work on the presentation loop. Post returns false once the
// loop has stopped.
type Poster interface {
	Post(fn func()) bool
}

// Display shows render results. Calls always happen on the presentation loop.
//
// ShowImage must finish with the image before returning; the temp directory
// holding it is removed right after.
type Display interface {
	ShowImage(ctx context.Context, img surface.Image) error
	ShowError(ctx context.Context, message string)
}
