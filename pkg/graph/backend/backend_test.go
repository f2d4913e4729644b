package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph/memory"
	"github.com/matzehuels/vkgraph/pkg/graph/sqlite"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "Memory"})
	if err != nil {
		t.Fatalf("Open(memory) error: %v", err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	s, err = Open(ctx, Options{Backend: SQLite, SQLite: filepath.Join(t.TempDir(), "g.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error: %v", err)
	}
	defer s.Close(ctx)
	if _, ok := s.(*sqlite.Store); !ok {
		t.Errorf("Open(sqlite) = %T", s)
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "postgres"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(postgres) error = %v, want INVALID_CONFIG", err)
	}
}

func TestValid(t *testing.T) {
	for _, name := range []string{"memory", "SQLite", "neo4j", "mongo"} {
		if !Valid(name) {
			t.Errorf("Valid(%q) = false", name)
		}
	}
	if Valid("postgres") {
		t.Error(`Valid("postgres") = true`)
	}
}
