// Package sqlite stores the crawled graph in a single SQLite file.
//
// It uses the pure-Go modernc.org/sqlite driver, so the CLI needs no cgo
// toolchain to keep a local copy of a crawl.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/matzehuels/vkgraph/pkg/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS identities (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	handle    TEXT NOT NULL DEFAULT '',
	sex       INTEGER NOT NULL DEFAULT 0,
	home_town TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS communities (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL DEFAULT '',
	handle TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS edges (
	src      INTEGER NOT NULL,
	dst      INTEGER NOT NULL,
	relation TEXT NOT NULL,
	PRIMARY KEY (src, relation, dst)
);

CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(relation, dst);
`

// Store is a [graph.Sink] and [graph.Querier] backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: init: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// UpsertIdentity implements [graph.Sink].
func (s *Store) UpsertIdentity(ctx context.Context, id graph.Identity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (id, name, handle, sex, home_town) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			handle = excluded.handle,
			sex = excluded.sex,
			home_town = excluded.home_town`,
		int64(id.Key), id.Name, id.Handle, id.Sex, id.HomeTown)
	if err != nil {
		return fmt.Errorf("sqlite: upsert identity %s: %w", id.Key, err)
	}
	return nil
}

// UpsertGroup implements [graph.Sink].
func (s *Store) UpsertGroup(ctx context.Context, g graph.Group) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO communities (id, name, handle) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, handle = excluded.handle`,
		int64(g.Key), g.Name, g.Handle)
	if err != nil {
		return fmt.Errorf("sqlite: upsert group %s: %w", g.Key, err)
	}
	return nil
}

// UpsertEdge implements [graph.Sink].
func (s *Store) UpsertEdge(ctx context.Context, e graph.Edge) error {
	if !e.Relation.Valid() {
		return fmt.Errorf("sqlite: unknown relation %q", e.Relation)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO edges (src, dst, relation) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		int64(e.From), int64(e.To), string(e.Relation))
	if err != nil {
		return fmt.Errorf("sqlite: upsert edge %s: %w", e.ID(), err)
	}
	return nil
}

// Close implements [graph.Sink].
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

var (
	_ graph.Sink    = (*Store)(nil)
	_ graph.Querier = (*Store)(nil)
)
