// Package backend opens a graph store by name.
package backend

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/graph/memory"
	"github.com/matzehuels/vkgraph/pkg/graph/mongo"
	"github.com/matzehuels/vkgraph/pkg/graph/neo4j"
	"github.com/matzehuels/vkgraph/pkg/graph/sqlite"
)

// Backend names.
const (
	Memory = "memory"
	SQLite = "sqlite"
	Neo4j  = "neo4j"
	Mongo  = "mongo"
)

// Names lists the supported backends.
var Names = []string{Memory, SQLite, Neo4j, Mongo}

// Store is a sink that can also answer queries. All backends implement it.
type Store interface {
	graph.Sink
	graph.Querier
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	SQLite  string // database file
	Neo4j   neo4j.Config
	Mongo   mongo.Config
}

// Valid reports whether name is a supported backend.
func Valid(name string) bool {
	return slices.Contains(Names, strings.ToLower(name))
}

// Open connects to the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case Memory, "":
		return memory.New(), nil
	case SQLite:
		s, err := sqlite.Open(ctx, opts.SQLite)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSink, err, "open sqlite store")
		}
		return s, nil
	case Neo4j:
		s, err := neo4j.Open(ctx, opts.Neo4j)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSink, err, "open neo4j store")
		}
		return s, nil
	case Mongo:
		s, err := mongo.Open(ctx, opts.Mongo)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSink, err, "open mongo store")
		}
		return s, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown sink %q (want one of %s)", opts.Backend, strings.Join(Names, ", "))
	}
}
