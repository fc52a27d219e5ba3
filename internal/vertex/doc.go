// Package vertex owns vertex identity and enable state for a single editing
// session.
//
// # Identity
//
// A Vertex is identified by its Label. The numeric ID is assigned from a
// per-store monotonic counter when the vertex is created and is informational
// only: two vertices with the same label are the same vertex regardless of ID.
//
// # Store
//
// Store holds at most one live Vertex per label. It exposes values, never
// pointers into its table, so callers observe state through the store rather
// than through aliased records. The store never inspects edges; cascading a
// state change to incident edges is the graph model's job.
//
// # Degree
//
// Degree counts Add calls per label: it starts at 1 when the vertex is
// inserted and grows by one every time Add is called again with the same
// label. It is never decremented and is not the graph-theoretic degree.
package vertex
