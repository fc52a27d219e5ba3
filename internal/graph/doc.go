// Package graph keeps the edge set of the user's diagram consistent with the
// free-form edge text and with per-vertex enable state.
//
// # Why Graph Package Exists
//
// The user types arbitrary text, one "LEFT -> RIGHT" per line, and toggles
// vertices on and off. The graph package turns every version of that text into
// a vertex/edge model while keeping the one piece of state the user set by
// hand: whether a vertex is enabled.
//
//   - **Forgiving parse:** Malformed lines are dropped silently so live typing
//     never produces errors.
//   - **State by label:** Vertex enable state survives edits, keyed by label.
//   - **Derived edges:** An edge is enabled iff both endpoints are enabled.
//
// # Architecture
//
// The Model owns the edge set and delegates vertex bookkeeping to an injected
// Vertices collaborator (vertex.Store in production):
//
//	┌─────────────────────────────┐
//	│            Model            │
//	│  edges (insertion-ordered)  │
//	│  adjacency label -> edges   │
//	└──────────────┬──────────────┘
//	               │ Add / RemoveByLabel / SetState / ByLabel
//	               ▼
//	      ┌──────────────────┐
//	      │  Vertices store  │
//	      │ (label -> state) │
//	      └──────────────────┘
//
// Edges reference their endpoints by label, a stable key into the vertex
// table, so a state change is visible to the model without copying vertex
// records into edges.
//
// # Reconciliation
//
// Reconcile rebuilds every edge from scratch on each call. Edges have no
// identity across edits; only vertices persist. Vertices that are no longer
// referenced by any valid line are removed, and the captured enable state of
// every surviving vertex is written back after the rebuild.
//
// # Thread-Safety
//
// Model methods are safe for concurrent use, but the application runs every
// mutation on the presentation loop so that listeners observe changes in a
// single, well-defined order. Listeners are called outside the model lock and
// receive immutable snapshots.
package graph
