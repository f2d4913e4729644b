package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// Counts implements [graph.Querier].
func (s *Store) Counts(ctx context.Context) (graph.Counts, error) {
	var c graph.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM identities),
			(SELECT COUNT(*) FROM communities),
			(SELECT COUNT(*) FROM edges WHERE relation = ?),
			(SELECT COUNT(*) FROM edges WHERE relation = ?)`,
		string(graph.Follow), string(graph.Subscribe),
	).Scan(&c.Identities, &c.Groups, &c.Follows, &c.Subscribes)
	if err != nil {
		return c, fmt.Errorf("sqlite: counts: %w", err)
	}
	return c, nil
}

// TopIdentities implements [graph.Querier].
func (s *Store) TopIdentities(ctx context.Context, n int) ([]graph.Ranked, error) {
	return s.top(ctx, `
		SELECT e.dst, COALESCE(i.name, ''), COUNT(*) AS c
		FROM edges e LEFT JOIN identities i ON i.id = e.dst
		WHERE e.relation = ? AND e.dst > 0
		GROUP BY e.dst
		ORDER BY c DESC, e.dst ASC
		LIMIT ?`, graph.Follow, n)
}

// TopGroups implements [graph.Querier].
func (s *Store) TopGroups(ctx context.Context, n int) ([]graph.Ranked, error) {
	return s.top(ctx, `
		SELECT e.dst, COALESCE(g.name, ''), COUNT(*) AS c
		FROM edges e LEFT JOIN communities g ON g.id = e.dst
		WHERE e.relation = ? AND e.dst < 0
		GROUP BY e.dst
		ORDER BY c DESC, e.dst ASC
		LIMIT ?`, graph.Subscribe, n)
}

func (s *Store) top(ctx context.Context, query string, rel graph.Relation, n int) ([]graph.Ranked, error) {
	if n <= 0 {
		n = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx, query, string(rel), n)
	if err != nil {
		return nil, fmt.Errorf("sqlite: top: %w", err)
	}
	defer rows.Close()

	var out []graph.Ranked
	for rows.Next() {
		var r graph.Ranked
		var key int64
		if err := rows.Scan(&key, &r.Name, &r.Count); err != nil {
			return nil, fmt.Errorf("sqlite: top: %w", err)
		}
		r.Key = graph.Key(key)
		if r.Name == "" {
			r.Name = r.Key.String()
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CommonSubscriptions implements [graph.Querier].
func (s *Store) CommonSubscriptions(ctx context.Context, n int) ([]graph.SharedSubscriptions, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.src, COALESCE(ia.name, ''), b.src, COALESCE(ib.name, ''), COUNT(*) AS c,
		       GROUP_CONCAT(COALESCE(NULLIF(i.name, ''), NULLIF(g.name, ''), CAST(a.dst AS TEXT)), char(31))
		FROM edges a
		JOIN edges b ON b.relation = a.relation AND b.dst = a.dst AND b.src > a.src
		LEFT JOIN identities ia ON ia.id = a.src
		LEFT JOIN identities ib ON ib.id = b.src
		LEFT JOIN identities i ON i.id = a.dst
		LEFT JOIN communities g ON g.id = a.dst
		WHERE a.relation = ? AND a.src > 0 AND b.src > 0
		GROUP BY a.src, b.src
		ORDER BY c DESC, a.src ASC, b.src ASC
		LIMIT ?`, string(graph.Subscribe), n)
	if err != nil {
		return nil, fmt.Errorf("sqlite: common subscriptions: %w", err)
	}
	defer rows.Close()

	var out []graph.SharedSubscriptions
	for rows.Next() {
		var p graph.SharedSubscriptions
		var first, second int64
		var count int
		var shared string
		if err := rows.Scan(&first, &p.First.Name, &second, &p.Second.Name, &count, &shared); err != nil {
			return nil, fmt.Errorf("sqlite: common subscriptions: %w", err)
		}
		p.First.Key, p.Second.Key = graph.Key(first), graph.Key(second)
		p.First.Count, p.Second.Count = count, count
		if p.First.Name == "" {
			p.First.Name = p.First.Key.String()
		}
		if p.Second.Name == "" {
			p.Second.Name = p.Second.Key.String()
		}
		p.Shared = strings.Split(shared, "\x1f")
		out = append(out, p)
	}
	return out, rows.Err()
}
