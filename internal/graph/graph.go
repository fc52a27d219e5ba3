package graph

import (
	"context"
	"sync"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/vertex"
)

// Key identifies an edge by its ordered endpoint labels.
type Key struct {
	Left  string
	Right string
}

// Edge is a directed edge between two vertex labels. Enabled is derived: it
// is true iff both endpoints are enabled.
type Edge struct {
	Left    string
	Right   string
	Enabled bool
}

// Key returns the edge's identity.
func (e Edge) Key() Key { return Key{Left: e.Left, Right: e.Right} }

func (e Edge) String() string { return e.Left + Separator + e.Right }

// Option configures a Model.
type Option func(*Model)

// WithListener registers the enabled-edge change listener.
func WithListener(l Listener) Option {
	return func(m *Model) { m.listener = l }
}

// Model is the graph of the current edge text.
type Model struct {
	mu       sync.RWMutex
	vertices Vertices
	listener Listener

	// order keeps first-insertion order so snapshots are deterministic.
	order []Key
	edges map[Key]*Edge

	// adjacency maps a vertex label to the keys of every edge touching it.
	adjacency map[string]map[Key]struct{}
}

// New creates an empty model backed by the given vertex collaborator.
func New(vertices Vertices, opts ...Option) *Model {
	m := &Model{
		vertices:  vertices,
		edges:     make(map[Key]*Edge),
		adjacency: make(map[string]map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnEnabledEdgesChanged replaces the change listener.
func (m *Model) OnEnabledEdgesChanged(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// Reconcile rebuilds the edge set from text. Invalid lines are skipped.
// Vertices referenced by the new text keep the enable state they had before
// the call; vertices no longer referenced are removed.
func (m *Model) Reconcile(ctx context.Context, text string) {
	lines := parseText(text)

	m.mu.Lock()

	states := make(map[string]bool, m.vertices.Count())
	for _, v := range m.vertices.All() {
		states[v.Label] = v.Enabled
	}

	referenced := make(map[string]struct{}, len(lines)*2)
	var referencedOrder []string
	for _, l := range lines {
		for _, label := range [2]string{l.left, l.right} {
			if _, seen := referenced[label]; !seen {
				referenced[label] = struct{}{}
				referencedOrder = append(referencedOrder, label)
			}
		}
	}

	m.clearEdgesLocked()

	for _, l := range lines {
		m.ensureVertexLocked(l.left)
		m.ensureVertexLocked(l.right)
		m.insertEdgeLocked(l.left, l.right)
	}

	for _, label := range referencedOrder {
		m.ensureVertexLocked(label)
		if enabled, ok := states[label]; ok {
			m.vertices.SetState(label, enabled)
		}
	}

	removed := 0
	for _, v := range m.vertices.All() {
		if _, ok := referenced[v.Label]; !ok {
			if m.vertices.RemoveByLabel(v.Label) {
				removed++
			}
		}
	}

	for _, v := range m.vertices.All() {
		if enabled, ok := states[v.Label]; ok {
			m.vertices.SetState(v.Label, enabled)
		}
	}

	for _, e := range m.edges {
		e.Enabled = m.endpointsEnabledLocked(e.Left, e.Right)
	}

	snapshot := m.enabledLocked()
	listener := m.listener
	total := len(m.order)
	vertexCount := m.vertices.Count()
	m.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Edge text reconciled.",
		"edges", total,
		"enabled_edges", len(snapshot),
		"vertices", vertexCount,
		"removed_vertices", removed,
	)

	if listener != nil {
		listener(snapshot)
	}
}

// SetVertexStatus enables or disables a vertex and recomputes every edge
// touching it. The enabled-edge snapshot is emitted even when the label is
// unknown; the return value reports whether the vertex existed.
func (m *Model) SetVertexStatus(ctx context.Context, label string, enabled bool) bool {
	m.mu.Lock()
	found := m.vertices.SetState(label, enabled)
	for key := range m.adjacency[label] {
		e := m.edges[key]
		e.Enabled = m.endpointsEnabledLocked(e.Left, e.Right)
	}
	snapshot := m.enabledLocked()
	listener := m.listener
	m.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Vertex status changed.",
		"label", label,
		"enabled", enabled,
		"found", found,
		"enabled_edges", len(snapshot),
	)

	if listener != nil {
		listener(snapshot)
	}
	return found
}

// EnabledEdges returns the enabled edges in insertion order.
func (m *Model) EnabledEdges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabledLocked()
}

// Edges returns every edge in insertion order.
func (m *Model) Edges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Edge, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, *m.edges[key])
	}
	return out
}

// Vertices returns the live vertices ordered by ID.
func (m *Model) Vertices() []vertex.Vertex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vertices.All()
}

// Vertex returns the live vertex with the given label.
func (m *Model) Vertex(label string) (vertex.Vertex, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vertices.ByLabel(label)
}

// VertexCount returns the number of live vertices.
func (m *Model) VertexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vertices.Count()
}

func (m *Model) clearEdgesLocked() {
	m.order = m.order[:0]
	clear(m.edges)
	clear(m.adjacency)
}

func (m *Model) ensureVertexLocked(label string) {
	if _, ok := m.vertices.ByLabel(label); ok {
		return
	}
	m.vertices.Add(vertex.New(m.vertices.NextID(), label))
}

func (m *Model) insertEdgeLocked(left, right string) {
	key := Key{Left: left, Right: right}
	if _, dup := m.edges[key]; dup {
		return
	}
	m.edges[key] = &Edge{
		Left:    left,
		Right:   right,
		Enabled: m.endpointsEnabledLocked(left, right),
	}
	m.order = append(m.order, key)
	m.link(left, key)
	m.link(right, key)
}

func (m *Model) link(label string, key Key) {
	set, ok := m.adjacency[label]
	if !ok {
		set = make(map[Key]struct{})
		m.adjacency[label] = set
	}
	set[key] = struct{}{}
}

func (m *Model) endpointsEnabledLocked(left, right string) bool {
	lv, ok := m.vertices.ByLabel(left)
	if !ok || !lv.Enabled {
		return false
	}
	rv, ok := m.vertices.ByLabel(right)
	return ok && rv.Enabled
}

func (m *Model) enabledLocked() []Edge {
	out := make([]Edge, 0, len(m.order))
	for _, key := range m.order {
		if e := m.edges[key]; e.Enabled {
			out = append(out, *e)
		}
	}
	return out
}
