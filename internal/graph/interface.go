package graph

import "github.com/specialistvlad/graphvisgo/internal/vertex"

// Vertices is the vertex collaborator the Model reconciles against.
//
// Implementations own vertex identity and enable state. They must keep at
// most one vertex per label and must not look at edges.
type Vertices interface {
	// Add inserts v, or increments the degree of the vertex already carrying
	// v's label. Disabled vertices are rejected with false.
	Add(v vertex.Vertex) bool

	// RemoveByLabel deletes a vertex; false if the label is unknown.
	RemoveByLabel(label string) bool

	// SetState flips a vertex's enabled flag; false if the label is unknown.
	SetState(label string, enabled bool) bool

	// ByLabel returns the current vertex for a label.
	ByLabel(label string) (vertex.Vertex, bool)

	// All returns every live vertex.
	All() []vertex.Vertex

	// Count returns the number of live vertices.
	Count() int

	// NextID reserves an ID for a vertex about to be created.
	NextID() int
}

// Listener receives the enabled-edge snapshot after every reconciliation and
// every vertex status change.
type Listener func(edges []Edge)
