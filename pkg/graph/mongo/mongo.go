// Package mongo stores the crawled graph in MongoDB.
//
// Identities, groups and edges live in three collections keyed by _id:
// the graph key for nodes and [graph.Edge.ID] for edges. Writes are
// upserts, so repeated crawls never duplicate documents.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "vkgraph"

// Collection names.
const (
	CollectionIdentities = "identities"
	CollectionGroups     = "groups"
	CollectionEdges      = "edges"
)

// Config holds the connection settings.
type Config struct {
	URI      string // mongodb://host:27017
	Database string
}

// Store is a [graph.Sink] and [graph.Querier] backed by MongoDB.
type Store struct {
	client     *mongo.Client
	identities *mongo.Collection
	groups     *mongo.Collection
	edges      *mongo.Collection
}

// Open connects to MongoDB and pings the primary.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	name := cfg.Database
	if name == "" {
		name = DefaultDatabase
	}
	db := client.Database(name)
	s := &Store{
		client:     client,
		identities: db.Collection(CollectionIdentities),
		groups:     db.Collection(CollectionGroups),
		edges:      db.Collection(CollectionEdges),
	}

	_, err = s.edges.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "relation", Value: 1}, {Key: "to", Value: 1}}},
		{Keys: bson.D{{Key: "relation", Value: 1}, {Key: "from", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: indexes: %w", err)
	}
	return s, nil
}

func upsert(ctx context.Context, c *mongo.Collection, id any, update bson.M) error {
	_, err := c.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}

// identityFields is the stored form of id. Field names follow the bson tags
// of [graph.Identity].
func identityFields(id graph.Identity) bson.M {
	return bson.M{
		"name":        id.Name,
		"screen_name": id.Handle,
		"sex":         id.Sex,
		"home_town":   id.HomeTown,
	}
}

func groupFields(g graph.Group) bson.M {
	return bson.M{
		"name":        g.Name,
		"screen_name": g.Handle,
	}
}

// UpsertIdentity implements [graph.Sink].
func (s *Store) UpsertIdentity(ctx context.Context, id graph.Identity) error {
	err := upsert(ctx, s.identities, int64(id.Key), bson.M{"$set": identityFields(id)})
	if err != nil {
		return fmt.Errorf("mongo: upsert identity %s: %w", id.Key, err)
	}
	return nil
}

// UpsertGroup implements [graph.Sink].
func (s *Store) UpsertGroup(ctx context.Context, g graph.Group) error {
	err := upsert(ctx, s.groups, int64(g.Key), bson.M{"$set": groupFields(g)})
	if err != nil {
		return fmt.Errorf("mongo: upsert group %s: %w", g.Key, err)
	}
	return nil
}

// UpsertEdge implements [graph.Sink]. Endpoints are not materialized as
// documents; queries fall back to the key for unnamed endpoints.
func (s *Store) UpsertEdge(ctx context.Context, e graph.Edge) error {
	if !e.Relation.Valid() {
		return fmt.Errorf("mongo: unknown relation %q", e.Relation)
	}
	err := upsert(ctx, s.edges, e.ID(), bson.M{"$setOnInsert": bson.M{
		"from":     int64(e.From),
		"to":       int64(e.To),
		"relation": string(e.Relation),
	}})
	if err != nil {
		return fmt.Errorf("mongo: upsert edge %s: %w", e.ID(), err)
	}
	return nil
}

// Close implements [graph.Sink].
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var (
	_ graph.Sink    = (*Store)(nil)
	_ graph.Querier = (*Store)(nil)
)
