package testutil

import (
	"context"
	"os"
	"sync"

	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/surface"
)

// ShownImage is an image delivered to RecordingDisplay, with its bytes read
// at delivery time.
type ShownImage struct {
	surface.Image
	Content string
}

// RecordingDisplay records every result it is shown.
type RecordingDisplay struct {
	mu     sync.Mutex
	images []ShownImage
	errors []string
}

// ShowImage implements surface.Surface.
func (d *RecordingDisplay) ShowImage(_ context.Context, img surface.Image) error {
	data, err := os.ReadFile(img.Path)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.images = append(d.images, ShownImage{Image: img, Content: string(data)})
	return err
}

// ShowError implements surface.Surface.
func (d *RecordingDisplay) ShowError(_ context.Context, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, message)
}

// Images returns the delivered images.
func (d *RecordingDisplay) Images() []ShownImage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ShownImage, len(d.images))
	copy(out, d.images)
	return out
}

// Errors returns the delivered error messages.
func (d *RecordingDisplay) Errors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.errors))
	copy(out, d.errors)
	return out
}

// EdgeSource is a mutable stand-in for the graph model.
type EdgeSource struct {
	mu    sync.Mutex
	edges []graph.Edge
}

// Set replaces the edges returned by EnabledEdges.
func (s *EdgeSource) Set(edges ...graph.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = edges
}

// EnabledEdges implements scheduler.Source.
func (s *EdgeSource) EnabledEdges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Edge builds an enabled edge.
func Edge(left, right string) graph.Edge {
	return graph.Edge{Left: left, Right: right, Enabled: true}
}
