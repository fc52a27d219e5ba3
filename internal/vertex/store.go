package vertex

import (
	"slices"
	"sync"
)

// Vertex is a labeled node with enable state and an Add-occurrence counter.
type Vertex struct {
	ID      int
	Label   string
	Enabled bool
	Degree  int
}

// New returns an enabled vertex with a degree of 1.
func New(id int, label string) Vertex {
	return Vertex{ID: id, Label: label, Enabled: true, Degree: 1}
}

// Store is a thread-safe, label-keyed vertex table.
type Store struct {
	mu      sync.RWMutex
	byLabel map[string]*Vertex
	lastID  int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byLabel: make(map[string]*Vertex)}
}

// NextID reserves and returns the next vertex ID. IDs are never reused
// within a store, even after removals.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID
}

// Add inserts v, or bumps the degree of the existing vertex with the same
// label. A disabled vertex is rejected.
func (s *Store) Add(v Vertex) bool {
	if !v.Enabled {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byLabel[v.Label]; ok {
		existing.Degree++
		return true
	}

	if v.Degree < 1 {
		v.Degree = 1
	}
	if v.ID > s.lastID {
		s.lastID = v.ID
	}
	s.byLabel[v.Label] = &v
	return true
}

// RemoveByLabel deletes the vertex with the given label. It reports false if
// no such vertex exists.
func (s *Store) RemoveByLabel(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byLabel[label]; !ok {
		return false
	}
	delete(s.byLabel, label)
	return true
}

// SetState changes the enabled flag of the vertex with the given label in
// place. It reports false if no such vertex exists.
func (s *Store) SetState(label string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byLabel[label]
	if !ok {
		return false
	}
	v.Enabled = enabled
	return true
}

// ByLabel returns a copy of the vertex with the given label.
func (s *Store) ByLabel(label string) (Vertex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.byLabel[label]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// All returns copies of every vertex ordered by ID.
func (s *Store) All() []Vertex {
	s.mu.RLock()
	out := make([]Vertex, 0, len(s.byLabel))
	for _, v := range s.byLabel {
		out = append(out, *v)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Vertex) int { return a.ID - b.ID })
	return out
}

// Count returns the number of live vertices.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byLabel)
}
