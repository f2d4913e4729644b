package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// TestStoredFieldsMatchTags checks that documents written by the sink
// decode back into the graph types through their bson tags.
func TestStoredFieldsMatchTags(t *testing.T) {
	id := graph.Identity{Key: 1, Name: "Pavel Durov", Handle: "durov", Sex: 2, HomeTown: "Saint Petersburg"}
	doc := identityFields(id)
	doc["_id"] = int64(id.Key)

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var gotID graph.Identity
	if err := bson.Unmarshal(raw, &gotID); err != nil {
		t.Fatal(err)
	}
	if gotID != id {
		t.Errorf("identity round trip = %+v, want %+v", gotID, id)
	}

	g := graph.Group{Key: -1, Name: "VK", Handle: "vk"}
	gdoc := groupFields(g)
	gdoc["_id"] = int64(g.Key)
	if raw, err = bson.Marshal(gdoc); err != nil {
		t.Fatal(err)
	}
	var gotGroup graph.Group
	if err := bson.Unmarshal(raw, &gotGroup); err != nil {
		t.Fatal(err)
	}
	if gotGroup != g {
		t.Errorf("group round trip = %+v, want %+v", gotGroup, g)
	}
}

func TestNameOr(t *testing.T) {
	names := map[graph.Key]string{1: "Alice", -2: ""}
	tests := []struct {
		key  graph.Key
		want string
	}{
		{1, "Alice"},
		{-2, "-2"},
		{3, "3"},
	}
	for _, tt := range tests {
		if got := nameOr(names, tt.key); got != tt.want {
			t.Errorf("nameOr(%d) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// TestStoreRoundTrip runs against a live server when MONGO_TEST_URI is set.
func TestStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{URI: uri, Database: "vkgraph_test_" + time.Now().Format("150405")})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer func() {
		_ = s.identities.Database().Drop(ctx)
		s.Close(ctx)
	}()

	for range 2 {
		s.UpsertIdentity(ctx, graph.Identity{Key: 1, Name: "A"})
		s.UpsertIdentity(ctx, graph.Identity{Key: 2, Name: "B"})
		s.UpsertGroup(ctx, graph.Group{Key: -10, Name: "G"})
		s.UpsertEdge(ctx, graph.Edge{From: 2, To: 1, Relation: graph.Follow})
		s.UpsertEdge(ctx, graph.Edge{From: 1, To: -10, Relation: graph.Subscribe})
		s.UpsertEdge(ctx, graph.Edge{From: 2, To: -10, Relation: graph.Subscribe})
	}

	c, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if c != (graph.Counts{Identities: 2, Groups: 1, Follows: 1, Subscribes: 2}) {
		t.Errorf("Counts() = %+v", c)
	}

	pairs, err := s.CommonSubscriptions(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || pairs[0].Shared[0] != "G" {
		t.Errorf("CommonSubscriptions() = %+v", pairs)
	}
}
