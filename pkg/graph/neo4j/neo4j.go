// Package neo4j stores the crawled graph in Neo4j.
//
// Persons are (:User {id}) nodes and groups are (:Group {id}) nodes keyed
// by their negated id. Every write is a MERGE, so re-running a crawl only
// refreshes attributes.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// Config holds the connection settings.
type Config struct {
	URI      string // bolt://host:7687
	Username string
	Password string
	Database string // empty selects the server default
}

// Store is a [graph.Sink] and [graph.Querier] backed by Neo4j.
type Store struct {
	driver neo4j.DriverWithContext
	db     string
}

// Open connects to Neo4j and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: connect %s: %w", cfg.URI, err)
	}
	s := &Store{driver: driver, db: cfg.Database}
	if err := s.ensureConstraints(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureConstraints(ctx context.Context) error {
	for _, q := range []string{
		"CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT group_id IF NOT EXISTS FOR (g:Group) REQUIRE g.id IS UNIQUE",
	} {
		if err := s.write(ctx, q, nil); err != nil {
			return fmt.Errorf("neo4j: constraints: %w", err)
		}
	}
	return nil
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.db})
}

func (s *Store) write(ctx context.Context, query string, params map[string]any) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// UpsertIdentity implements [graph.Sink].
func (s *Store) UpsertIdentity(ctx context.Context, id graph.Identity) error {
	const query = `
		MERGE (u:User {id: $id})
		SET u.screen_name = $screen_name,
		    u.name = $name,
		    u.sex = $sex,
		    u.home_town = $home_town`

	err := s.write(ctx, query, map[string]any{
		"id":          int64(id.Key),
		"screen_name": id.Handle,
		"name":        id.Name,
		"sex":         id.Sex,
		"home_town":   id.HomeTown,
	})
	if err != nil {
		return fmt.Errorf("neo4j: upsert user %s: %w", id.Key, err)
	}
	return nil
}

// UpsertGroup implements [graph.Sink].
func (s *Store) UpsertGroup(ctx context.Context, g graph.Group) error {
	const query = `
		MERGE (g:Group {id: $id})
		SET g.name = $name,
		    g.screen_name = $screen_name`

	err := s.write(ctx, query, map[string]any{
		"id":          int64(g.Key),
		"name":        g.Name,
		"screen_name": g.Handle,
	})
	if err != nil {
		return fmt.Errorf("neo4j: upsert group %s: %w", g.Key, err)
	}
	return nil
}

// UpsertEdge implements [graph.Sink]. Endpoints are merged by id under the
// label their key sign implies.
func (s *Store) UpsertEdge(ctx context.Context, e graph.Edge) error {
	if !e.Relation.Valid() {
		return fmt.Errorf("neo4j: unknown relation %q", e.Relation)
	}
	query := fmt.Sprintf(`
		MERGE (a:%s {id: $from})
		MERGE (b:%s {id: $to})
		MERGE (a)-[:%s]->(b)`, label(e.From), label(e.To), e.Relation)

	err := s.write(ctx, query, map[string]any{
		"from": int64(e.From),
		"to":   int64(e.To),
	})
	if err != nil {
		return fmt.Errorf("neo4j: upsert edge %s: %w", e.ID(), err)
	}
	return nil
}

// Close implements [graph.Sink].
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func label(k graph.Key) string {
	if k.IsGroup() {
		return "Group"
	}
	return "User"
}

var (
	_ graph.Sink    = (*Store)(nil)
	_ graph.Querier = (*Store)(nil)
)
