// Package memory implements an in-process graph store.
//
// It is the reference [graph.Sink]: the crawler tests run against it, and
// the CLI tees crawl output into it when a DOT or SVG export is requested.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// Store keeps identities, groups and edges in maps keyed by identity.
// It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	identities map[graph.Key]graph.Identity
	groups     map[graph.Key]graph.Group
	edges      map[graph.Edge]struct{}
	writes     int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		identities: make(map[graph.Key]graph.Identity),
		groups:     make(map[graph.Key]graph.Group),
		edges:      make(map[graph.Edge]struct{}),
	}
}

// UpsertIdentity implements [graph.Sink].
func (s *Store) UpsertIdentity(_ context.Context, id graph.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[id.Key] = id
	s.writes++
	return nil
}

// UpsertGroup implements [graph.Sink].
func (s *Store) UpsertGroup(_ context.Context, g graph.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.Key] = g
	s.writes++
	return nil
}

// UpsertEdge implements [graph.Sink].
func (s *Store) UpsertEdge(_ context.Context, e graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[e] = struct{}{}
	s.writes++
	return nil
}

// Close implements [graph.Sink]. The store stays readable after Close.
func (s *Store) Close(context.Context) error { return nil }

// Writes returns the number of upsert calls received, including repeats.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Identity returns the person stored under key.
func (s *Store) Identity(key graph.Key) (graph.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[key]
	return id, ok
}

// Group returns the group stored under key.
func (s *Store) Group(key graph.Key) (graph.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[key]
	return g, ok
}

// HasEdge reports whether e was upserted.
func (s *Store) HasEdge(e graph.Edge) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[e]
	return ok
}

// IdentityKeys returns all person keys in ascending order.
func (s *Store) IdentityKeys() []graph.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.identities))
}

// GroupKeys returns all group keys in ascending order.
func (s *Store) GroupKeys() []graph.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.groups))
}

// Edges returns all edges ordered by relation, source and target.
func (s *Store) Edges() []graph.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.SortedFunc(maps.Keys(s.edges), compareEdges)
}

func compareEdges(a, b graph.Edge) int {
	return cmp.Or(
		cmp.Compare(a.Relation, b.Relation),
		cmp.Compare(a.From, b.From),
		cmp.Compare(a.To, b.To),
	)
}

var (
	_ graph.Sink    = (*Store)(nil)
	_ graph.Querier = (*Store)(nil)
)
