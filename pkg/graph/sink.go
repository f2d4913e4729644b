package graph

import (
	"context"
	"errors"
)

// Sink is an idempotent upsert target for crawled nodes and edges.
// A call either fully applies or returns an error.
type Sink interface {
	// UpsertIdentity creates the person node or overwrites its attributes.
	UpsertIdentity(ctx context.Context, id Identity) error
	// UpsertGroup creates the group node or overwrites its attributes.
	UpsertGroup(ctx context.Context, g Group) error
	// UpsertEdge creates the edge if it does not exist. Missing endpoints
	// are created without attributes.
	UpsertEdge(ctx context.Context, e Edge) error
	// Close flushes and releases the store connection.
	Close(ctx context.Context) error
}

// Counts summarizes the size of a stored graph.
type Counts struct {
	Identities int `json:"identities"`
	Groups     int `json:"groups"`
	Follows    int `json:"follows"`
	Subscribes int `json:"subscribes"`
}

// Ranked is a node with an associated count, e.g. followers.
type Ranked struct {
	Key   Key    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SharedSubscriptions is a pair of persons subscribed to the same targets.
type SharedSubscriptions struct {
	First  Ranked   `json:"first"`
	Second Ranked   `json:"second"`
	Shared []string `json:"shared"` // names of the common targets
}

// Querier answers aggregate questions about a stored graph.
type Querier interface {
	// Counts returns node and edge totals.
	Counts(ctx context.Context) (Counts, error)
	// TopIdentities returns the n persons with the most followers.
	TopIdentities(ctx context.Context, n int) ([]Ranked, error)
	// TopGroups returns the n groups with the most subscribers.
	TopGroups(ctx context.Context, n int) ([]Ranked, error)
	// CommonSubscriptions returns the n person pairs sharing the most
	// subscription targets.
	CommonSubscriptions(ctx context.Context, n int) ([]SharedSubscriptions, error)
}

// Tee writes to every sink in order and joins their errors. All sinks
// receive every call even when an earlier one fails.
type Tee []Sink

// UpsertIdentity implements [Sink].
func (t Tee) UpsertIdentity(ctx context.Context, id Identity) error {
	return t.each(func(s Sink) error { return s.UpsertIdentity(ctx, id) })
}

// UpsertGroup implements [Sink].
func (t Tee) UpsertGroup(ctx context.Context, g Group) error {
	return t.each(func(s Sink) error { return s.UpsertGroup(ctx, g) })
}

// UpsertEdge implements [Sink].
func (t Tee) UpsertEdge(ctx context.Context, e Edge) error {
	return t.each(func(s Sink) error { return s.UpsertEdge(ctx, e) })
}

// Close implements [Sink].
func (t Tee) Close(ctx context.Context) error {
	return t.each(func(s Sink) error { return s.Close(ctx) })
}

func (t Tee) each(fn func(Sink) error) error {
	var errs []error
	for _, s := range t {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
