package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

func seed(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := New()
	ids := []graph.Identity{
		{Key: 1, Name: "Alice"},
		{Key: 2, Name: "Bob", Handle: "bob"},
		{Key: 3, Name: "Carol"},
	}
	for _, id := range ids {
		if err := s.UpsertIdentity(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.UpsertGroup(ctx, graph.Group{Key: graph.GroupKey(10), Name: "Go"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertGroup(ctx, graph.Group{Key: graph.GroupKey(11), Name: "Rust"}); err != nil {
		t.Fatal(err)
	}
	edges := []graph.Edge{
		{From: 2, To: 1, Relation: graph.Follow},
		{From: 3, To: 1, Relation: graph.Follow},
		{From: 3, To: 2, Relation: graph.Follow},
		{From: 1, To: graph.GroupKey(10), Relation: graph.Subscribe},
		{From: 2, To: graph.GroupKey(10), Relation: graph.Subscribe},
		{From: 2, To: graph.GroupKey(11), Relation: graph.Subscribe},
		{From: 3, To: graph.GroupKey(10), Relation: graph.Subscribe},
		{From: 3, To: graph.GroupKey(11), Relation: graph.Subscribe},
	}
	for _, e := range edges {
		if err := s.UpsertEdge(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	for range 3 {
		_ = s.UpsertIdentity(ctx, graph.Identity{Key: 1, Name: "Alice"})
		_ = s.UpsertGroup(ctx, graph.Group{Key: -1, Name: "G"})
		_ = s.UpsertEdge(ctx, graph.Edge{From: 1, To: -1, Relation: graph.Subscribe})
	}

	c, _ := s.Counts(ctx)
	want := graph.Counts{Identities: 1, Groups: 1, Subscribes: 1}
	if c != want {
		t.Errorf("Counts() = %+v, want %+v", c, want)
	}
	if s.Writes() != 9 {
		t.Errorf("Writes() = %d, want 9", s.Writes())
	}
}

func TestUpsertOverwritesAttributes(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.UpsertIdentity(ctx, graph.Identity{Key: 1, Name: "Old", HomeTown: "Moscow"})
	_ = s.UpsertIdentity(ctx, graph.Identity{Key: 1, Name: "New"})

	id, ok := s.Identity(1)
	if !ok {
		t.Fatal("identity missing")
	}
	if id.Name != "New" || id.HomeTown != "" {
		t.Errorf("Identity = %+v, want full overwrite", id)
	}
}

func TestCounts(t *testing.T) {
	s := seed(t)
	c, err := s.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := graph.Counts{Identities: 3, Groups: 2, Follows: 3, Subscribes: 5}
	if c != want {
		t.Errorf("Counts() = %+v, want %+v", c, want)
	}
}

func TestTopIdentities(t *testing.T) {
	s := seed(t)
	top, _ := s.TopIdentities(context.Background(), 5)
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].Key != 1 || top[0].Count != 2 || top[0].Name != "Alice" {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].Key != 2 || top[1].Count != 1 {
		t.Errorf("top[1] = %+v", top[1])
	}

	one, _ := s.TopIdentities(context.Background(), 1)
	if len(one) != 1 {
		t.Errorf("limit 1 returned %d", len(one))
	}
}

func TestTopGroups(t *testing.T) {
	s := seed(t)
	top, _ := s.TopGroups(context.Background(), 5)
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].Name != "Go" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].Name != "Rust" || top[1].Count != 2 {
		t.Errorf("top[1] = %+v", top[1])
	}
}

func TestCommonSubscriptions(t *testing.T) {
	s := seed(t)
	pairs, _ := s.CommonSubscriptions(context.Background(), 3)
	if len(pairs) != 3 {
		t.Fatalf("len = %d, want 3", len(pairs))
	}
	first := pairs[0]
	if first.First.Key != 2 || first.Second.Key != 3 {
		t.Errorf("first pair = %d,%d, want 2,3", first.First.Key, first.Second.Key)
	}
	if strings.Join(first.Shared, ",") != "Rust,Go" {
		t.Errorf("shared = %v", first.Shared)
	}
}

func TestToDOT(t *testing.T) {
	s := seed(t)
	dot := s.ToDOT()
	for _, want := range []string{
		`digraph G {`,
		`"1" [label="Alice", shape=ellipse];`,
		`"-10" [label="Go", shape=box, fillcolor=lightgrey];`,
		`"2" -> "1" [style=solid];`,
		`"1" -> "-10" [style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
}
