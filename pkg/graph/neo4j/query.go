package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// read runs query and hands every record to fn.
func (s *Store) read(ctx context.Context, query string, params map[string]any, fn func(*neo4j.Record) error) error {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	for result.Next(ctx) {
		if err := fn(result.Record()); err != nil {
			return err
		}
	}
	return result.Err()
}

// Counts implements [graph.Querier].
func (s *Store) Counts(ctx context.Context) (graph.Counts, error) {
	const query = `
		CALL { MATCH (u:User) RETURN count(u) AS users }
		CALL { MATCH (g:Group) RETURN count(g) AS groups }
		CALL { MATCH ()-[f:Follow]->() RETURN count(f) AS follows }
		CALL { MATCH ()-[s:Subscribe]->() RETURN count(s) AS subscribes }
		RETURN users, groups, follows, subscribes`

	var c graph.Counts
	err := s.read(ctx, query, nil, func(r *neo4j.Record) error {
		c.Identities = intField(r, "users")
		c.Groups = intField(r, "groups")
		c.Follows = intField(r, "follows")
		c.Subscribes = intField(r, "subscribes")
		return nil
	})
	if err != nil {
		return c, fmt.Errorf("neo4j: counts: %w", err)
	}
	return c, nil
}

// TopIdentities implements [graph.Querier].
func (s *Store) TopIdentities(ctx context.Context, n int) ([]graph.Ranked, error) {
	const query = `
		MATCH (u:User)<-[:Follow]-(f:User)
		RETURN u.id AS id, coalesce(u.name, '') AS name, count(f) AS count
		ORDER BY count DESC, id ASC
		LIMIT $n`
	return s.ranked(ctx, "top users", query, n)
}

// TopGroups implements [graph.Querier].
func (s *Store) TopGroups(ctx context.Context, n int) ([]graph.Ranked, error) {
	const query = `
		MATCH (g:Group)<-[:Subscribe]-(u:User)
		RETURN g.id AS id, coalesce(g.name, '') AS name, count(u) AS count
		ORDER BY count DESC, id ASC
		LIMIT $n`
	return s.ranked(ctx, "top groups", query, n)
}

func (s *Store) ranked(ctx context.Context, what, query string, n int) ([]graph.Ranked, error) {
	var out []graph.Ranked
	err := s.read(ctx, query, map[string]any{"n": n}, func(r *neo4j.Record) error {
		out = append(out, graph.Ranked{
			Key:   graph.Key(int64Field(r, "id")),
			Name:  stringField(r, "name"),
			Count: intField(r, "count"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: %s: %w", what, err)
	}
	return out, nil
}

// CommonSubscriptions implements [graph.Querier].
func (s *Store) CommonSubscriptions(ctx context.Context, n int) ([]graph.SharedSubscriptions, error) {
	const query = `
		MATCH (u1:User)-[:Subscribe]->(t)<-[:Subscribe]-(u2:User)
		WHERE u1.id < u2.id
		WITH u1, u2, collect(coalesce(t.name, toString(t.id))) AS shared
		RETURN u1.id AS id1, coalesce(u1.name, '') AS name1,
		       u2.id AS id2, coalesce(u2.name, '') AS name2,
		       size(shared) AS count, shared
		ORDER BY count DESC, id1 ASC, id2 ASC
		LIMIT $n`

	var out []graph.SharedSubscriptions
	err := s.read(ctx, query, map[string]any{"n": n}, func(r *neo4j.Record) error {
		count := intField(r, "count")
		pair := graph.SharedSubscriptions{
			First:  graph.Ranked{Key: graph.Key(int64Field(r, "id1")), Name: stringField(r, "name1"), Count: count},
			Second: graph.Ranked{Key: graph.Key(int64Field(r, "id2")), Name: stringField(r, "name2"), Count: count},
		}
		if v, ok := r.Get("shared"); ok {
			if list, ok := v.([]any); ok {
				for _, item := range list {
					if name, ok := item.(string); ok {
						pair.Shared = append(pair.Shared, name)
					}
				}
			}
		}
		out = append(out, pair)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: common subscriptions: %w", err)
	}
	return out, nil
}

func int64Field(r *neo4j.Record, key string) int64 {
	if v, ok := r.Get(key); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return 0
}

func intField(r *neo4j.Record, key string) int { return int(int64Field(r, key)) }

func stringField(r *neo4j.Record, key string) string {
	if v, ok := r.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
