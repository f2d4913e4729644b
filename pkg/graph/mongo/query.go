package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

type edgeDoc struct {
	From     int64  `bson:"from"`
	To       int64  `bson:"to"`
	Relation string `bson:"relation"`
}

type nameDoc struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

type countDoc struct {
	ID    int64 `bson:"_id"`
	Count int   `bson:"count"`
}

// Counts implements [graph.Querier].
func (s *Store) Counts(ctx context.Context) (graph.Counts, error) {
	var c graph.Counts
	counts := []struct {
		dst    *int
		coll   *mongo.Collection
		filter bson.M
	}{
		{&c.Identities, s.identities, bson.M{}},
		{&c.Groups, s.groups, bson.M{}},
		{&c.Follows, s.edges, bson.M{"relation": string(graph.Follow)}},
		{&c.Subscribes, s.edges, bson.M{"relation": string(graph.Subscribe)}},
	}
	for _, q := range counts {
		n, err := q.coll.CountDocuments(ctx, q.filter)
		if err != nil {
			return c, fmt.Errorf("mongo: counts: %w", err)
		}
		*q.dst = int(n)
	}
	return c, nil
}

// TopIdentities implements [graph.Querier].
func (s *Store) TopIdentities(ctx context.Context, n int) ([]graph.Ranked, error) {
	match := bson.M{"relation": string(graph.Follow), "to": bson.M{"$gt": 0}}
	return s.top(ctx, match, s.identities, n)
}

// TopGroups implements [graph.Querier].
func (s *Store) TopGroups(ctx context.Context, n int) ([]graph.Ranked, error) {
	match := bson.M{"relation": string(graph.Subscribe), "to": bson.M{"$lt": 0}}
	return s.top(ctx, match, s.groups, n)
}

func (s *Store) top(ctx context.Context, match bson.M, names *mongo.Collection, n int) ([]graph.Ranked, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$to", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if n > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: n}})
	}

	cur, err := s.edges.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo: top: %w", err)
	}
	var rows []countDoc
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo: top: %w", err)
	}

	keys := make([]int64, len(rows))
	for i, r := range rows {
		keys[i] = r.ID
	}
	lookup, err := s.names(ctx, names, keys)
	if err != nil {
		return nil, err
	}

	out := make([]graph.Ranked, len(rows))
	for i, r := range rows {
		k := graph.Key(r.ID)
		out[i] = graph.Ranked{Key: k, Name: nameOr(lookup, k), Count: r.Count}
	}
	return out, nil
}

// CommonSubscriptions implements [graph.Querier].
func (s *Store) CommonSubscriptions(ctx context.Context, n int) ([]graph.SharedSubscriptions, error) {
	cur, err := s.edges.Find(ctx, bson.M{"relation": string(graph.Subscribe), "from": bson.M{"$gt": 0}})
	if err != nil {
		return nil, fmt.Errorf("mongo: common subscriptions: %w", err)
	}
	var edges []edgeDoc
	if err := cur.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("mongo: common subscriptions: %w", err)
	}

	subs := make(map[graph.Key][]graph.Key)
	var persons, groups []int64
	for _, e := range edges {
		subs[graph.Key(e.From)] = append(subs[graph.Key(e.From)], graph.Key(e.To))
		persons = append(persons, e.From)
		if e.To < 0 {
			groups = append(groups, e.To)
		} else {
			persons = append(persons, e.To)
		}
	}

	lookup, err := s.names(ctx, s.identities, persons)
	if err != nil {
		return nil, err
	}
	groupNames, err := s.names(ctx, s.groups, groups)
	if err != nil {
		return nil, err
	}
	for k, v := range groupNames {
		lookup[k] = v
	}
	return graph.RankShared(subs, func(k graph.Key) string { return nameOr(lookup, k) }, n), nil
}

func (s *Store) names(ctx context.Context, c *mongo.Collection, ids []int64) (map[graph.Key]string, error) {
	out := make(map[graph.Key]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo: names: %w", err)
	}
	var docs []nameDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: names: %w", err)
	}
	for _, d := range docs {
		out[graph.Key(d.ID)] = d.Name
	}
	return out, nil
}

func nameOr(names map[graph.Key]string, k graph.Key) string {
	if n := names[k]; n != "" {
		return n
	}
	return k.String()
}
