package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// Counts implements [graph.Querier].
func (s *Store) Counts(context.Context) (graph.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := graph.Counts{Identities: len(s.identities), Groups: len(s.groups)}
	for e := range s.edges {
		switch e.Relation {
		case graph.Follow:
			c.Follows++
		case graph.Subscribe:
			c.Subscribes++
		}
	}
	return c, nil
}

// TopIdentities implements [graph.Querier].
func (s *Store) TopIdentities(_ context.Context, n int) ([]graph.Ranked, error) {
	return s.top(n, func(e graph.Edge) bool {
		return e.Relation == graph.Follow && !e.To.IsGroup()
	}), nil
}

// TopGroups implements [graph.Querier].
func (s *Store) TopGroups(_ context.Context, n int) ([]graph.Ranked, error) {
	return s.top(n, func(e graph.Edge) bool {
		return e.Relation == graph.Subscribe && e.To.IsGroup()
	}), nil
}

func (s *Store) top(n int, match func(graph.Edge) bool) []graph.Ranked {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[graph.Key]int)
	for e := range s.edges {
		if match(e) {
			counts[e.To]++
		}
	}

	ranked := make([]graph.Ranked, 0, len(counts))
	for k, c := range counts {
		ranked = append(ranked, graph.Ranked{Key: k, Name: s.nameLocked(k), Count: c})
	}
	slices.SortFunc(ranked, compareRanked)
	return limit(ranked, n)
}

// CommonSubscriptions implements [graph.Querier].
func (s *Store) CommonSubscriptions(_ context.Context, n int) ([]graph.SharedSubscriptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make(map[graph.Key][]graph.Key)
	for e := range s.edges {
		if e.Relation == graph.Subscribe {
			subs[e.From] = append(subs[e.From], e.To)
		}
	}
	return graph.RankShared(subs, s.nameLocked, n), nil
}

func (s *Store) nameLocked(k graph.Key) string {
	if k.IsGroup() {
		if g, ok := s.groups[k]; ok && g.Name != "" {
			return g.Name
		}
	} else if id, ok := s.identities[k]; ok && id.Name != "" {
		return id.Name
	}
	return k.String()
}

func compareRanked(a, b graph.Ranked) int {
	return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Key, b.Key))
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
