package crawler

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/graph/memory"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// fakeAPI is an in-memory social graph that counts lookups per key.
type fakeAPI struct {
	mu        sync.Mutex
	missing   map[graph.Key]bool
	followers map[graph.Key][]graph.Key
	people    map[graph.Key][]graph.Key
	groups    map[graph.Key][]vk.Group
	lookups   map[graph.Key]int
	onLookup  func(graph.Key)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		missing:   make(map[graph.Key]bool),
		followers: make(map[graph.Key][]graph.Key),
		people:    make(map[graph.Key][]graph.Key),
		groups:    make(map[graph.Key][]vk.Group),
		lookups:   make(map[graph.Key]int),
	}
}

func (f *fakeAPI) Lookup(_ context.Context, key graph.Key) (*vk.User, error) {
	f.mu.Lock()
	f.lookups[key]++
	missing := f.missing[key]
	hook := f.onLookup
	f.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	if missing {
		return nil, fmt.Errorf("%w: %s", vk.ErrNotFound, key)
	}
	return &vk.User{ID: int64(key), FirstName: "User", LastName: key.String()}, nil
}

func (f *fakeAPI) Followers(_ context.Context, key graph.Key) []graph.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.followers[key]
}

func (f *fakeAPI) Subscriptions(_ context.Context, key graph.Key) ([]graph.Key, []vk.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.people[key], f.groups[key]
}

func (f *fakeAPI) lookupCount(key graph.Key) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups[key]
}

// scenario is the graph: followers(1)=[2,3], subscriptions(1)={[4], [10]}.
func scenario() *fakeAPI {
	api := newFakeAPI()
	api.followers[1] = []graph.Key{2, 3}
	api.people[1] = []graph.Key{4}
	api.groups[1] = []vk.Group{{ID: 10, Name: "Group 10"}}
	return api
}

func TestRunScenario(t *testing.T) {
	api := scenario()
	store := memory.New()

	res, err := New(api, api, store, Options{MaxDepth: 2, Workers: 4}).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	assertKeys(t, "identities", store.IdentityKeys(), []graph.Key{1, 2, 3, 4})
	assertKeys(t, "groups", store.GroupKeys(), []graph.Key{-10})

	want := []graph.Edge{
		{From: 2, To: 1, Relation: graph.Follow},
		{From: 3, To: 1, Relation: graph.Follow},
		{From: 1, To: 4, Relation: graph.Subscribe},
		{From: 1, To: -10, Relation: graph.Subscribe},
	}
	if got := store.Edges(); len(got) != len(want) {
		t.Errorf("edges = %v, want %d edges", got, len(want))
	}
	for _, e := range want {
		if !store.HasEdge(e) {
			t.Errorf("missing edge %v", e)
		}
	}

	if res.Dispatched != 4 || res.Resolved != 4 || res.Identities != 4 || res.Groups != 1 || res.Edges != 4 {
		t.Errorf("Result = %+v", res)
	}
	if res.MaxDepthSeen != 1 {
		t.Errorf("MaxDepthSeen = %d, want 1", res.MaxDepthSeen)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestRunDispatchesEachKeyOnce(t *testing.T) {
	// A complete graph where every node follows and subscribes to every
	// other node, so each key is discovered many times concurrently.
	api := newFakeAPI()
	const n = 30
	for i := graph.Key(1); i <= n; i++ {
		for j := graph.Key(1); j <= n; j++ {
			if i != j {
				api.followers[i] = append(api.followers[i], j)
				api.people[i] = append(api.people[i], j)
			}
		}
	}
	store := memory.New()

	res, err := New(api, api, store, Options{MaxDepth: 2, Workers: 16}).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for i := graph.Key(1); i <= n; i++ {
		if got := api.lookupCount(i); got != 1 {
			t.Errorf("key %d dispatched %d times", i, got)
		}
	}
	if res.Dispatched != n {
		t.Errorf("Dispatched = %d, want %d", res.Dispatched, n)
	}
}

func TestRunDepthBound(t *testing.T) {
	// Chain 4 -> 3 -> 2 -> 1 of followers: 4 is only reachable at depth 3.
	api := newFakeAPI()
	api.followers[1] = []graph.Key{2}
	api.followers[2] = []graph.Key{3}
	api.followers[3] = []graph.Key{4}
	store := memory.New()

	res, err := New(api, api, store, Options{MaxDepth: 2}).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if api.lookupCount(4) != 0 {
		t.Error("depth-3 node was resolved")
	}
	if _, ok := store.Identity(4); ok {
		t.Error("depth-3 node was upserted")
	}
	if store.HasEdge(graph.Edge{From: 4, To: 3, Relation: graph.Follow}) {
		t.Error("depth-2 node was expanded")
	}
	if res.MaxDepthSeen != 2 {
		t.Errorf("MaxDepthSeen = %d, want 2", res.MaxDepthSeen)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	api := scenario()
	api.followers[2] = []graph.Key{3, 1}
	store := memory.New()
	c := New(api, api, store, Options{})

	if _, err := c.Run(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	nodes, groups, edges := len(store.IdentityKeys()), len(store.GroupKeys()), len(store.Edges())

	if _, err := c.Run(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if len(store.IdentityKeys()) != nodes || len(store.GroupKeys()) != groups || len(store.Edges()) != edges {
		t.Errorf("second run changed the graph: %d/%d/%d -> %d/%d/%d",
			nodes, groups, edges, len(store.IdentityKeys()), len(store.GroupKeys()), len(store.Edges()))
	}
}

func TestRunKeepsPersonAndGroupKeysApart(t *testing.T) {
	api := newFakeAPI()
	api.people[1] = []graph.Key{5}
	api.groups[1] = []vk.Group{{ID: 5, Name: "Five"}}
	store := memory.New()

	if _, err := New(api, api, store, Options{}).Run(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Identity(5); !ok {
		t.Error("person 5 missing")
	}
	if g, ok := store.Group(-5); !ok || g.Name != "Five" {
		t.Errorf("group -5 = %+v, %v", g, ok)
	}
	if !store.HasEdge(graph.Edge{From: 1, To: 5, Relation: graph.Subscribe}) ||
		!store.HasEdge(graph.Edge{From: 1, To: -5, Relation: graph.Subscribe}) {
		t.Errorf("edges = %v", store.Edges())
	}
	if api.lookupCount(-5) != 0 {
		t.Error("group key was traversed")
	}
}

func TestRunPartialFailure(t *testing.T) {
	api := newFakeAPI()
	api.followers[1] = []graph.Key{2, 3, 4}
	api.followers[2] = []graph.Key{20}
	api.followers[4] = []graph.Key{40}
	api.missing[3] = true
	store := memory.New()

	res, err := New(api, api, store, Options{}).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	assertKeys(t, "identities", store.IdentityKeys(), []graph.Key{1, 2, 4, 20, 40})
	if res.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", res.Unresolved)
	}
	if !store.HasEdge(graph.Edge{From: 40, To: 4, Relation: graph.Follow}) {
		t.Error("sibling of failed item was not expanded")
	}
}

func TestRunSeedFailure(t *testing.T) {
	api := newFakeAPI()
	api.missing[1] = true

	_, err := New(api, api, memory.New(), Options{}).Run(context.Background(), 1)
	if !errors.Is(err, errors.ErrCodeInvalidSeed) {
		t.Errorf("Run() error = %v, want INVALID_SEED", err)
	}
}

// failingSink rejects every write for one key.
type failingSink struct {
	*memory.Store
	bad graph.Key
}

func (s failingSink) UpsertIdentity(ctx context.Context, id graph.Identity) error {
	if id.Key == s.bad {
		return fmt.Errorf("write %s: unavailable", id.Key)
	}
	return s.Store.UpsertIdentity(ctx, id)
}

func TestRunSinkFailureIsCounted(t *testing.T) {
	api := scenario()
	store := memory.New()

	res, err := New(api, api, failingSink{Store: store, bad: 3}, Options{}).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.SinkErrors != 1 || res.Identities != 3 || res.Resolved != 4 {
		t.Errorf("Result = %+v", res)
	}
}

func TestRunCancel(t *testing.T) {
	api := newFakeAPI()
	for i := graph.Key(2); i <= 100; i++ {
		api.followers[1] = append(api.followers[1], i)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api.onLookup = func(k graph.Key) {
		if k == 1 {
			cancel()
		}
	}

	res, err := New(api, api, memory.New(), Options{Workers: 1}).Run(ctx, 1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !res.Cancelled {
		t.Error("Cancelled = false")
	}
	if res.Dispatched >= 100 {
		t.Errorf("Dispatched = %d, dispatch should stop after cancel", res.Dispatched)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	if o.MaxDepth != DefaultMaxDepth || o.Workers != DefaultWorkers || o.Hooks == nil || o.Logger == nil {
		t.Errorf("WithDefaults() = %+v", o)
	}
}

func assertKeys(t *testing.T, what string, got, want []graph.Key) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s = %v, want %v", what, got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", what, got, want)
			return
		}
	}
}
