// Package collector accumulates paginated follower and subscription lists.
//
// Each list is fetched page by page, advancing the offset by the page size,
// until a page comes back shorter than requested, the configured cap is
// reached, or a page fails. A failing page ends the list: the error is
// logged and whatever was gathered so far is returned.
package collector

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// Defaults for the two lists.
const (
	DefaultFollowersPage     = 10
	DefaultFollowersCap      = 10
	DefaultSubscriptionsPage = 200
	DefaultSubscriptionsCap  = 0
)

// Pager fetches single pages. *vk.Client satisfies it.
type Pager interface {
	FollowersPage(ctx context.Context, userID int64, offset, count int) ([]int64, error)
	SubscriptionsPage(ctx context.Context, userID int64, offset, count int) ([]vk.SubscriptionItem, error)
}

// Limits bounds one list. A zero Cap means unbounded.
type Limits struct {
	PageSize int
	Cap      int
}

// Options configures a [Collector].
type Options struct {
	Followers     Limits
	Subscriptions Limits
	Logger        *log.Logger
}

// Collector gathers adjacency lists. It holds no per-call state and is safe
// for concurrent use.
type Collector struct {
	pager  Pager
	opts   Options
	logger *log.Logger
}

// New creates a Collector. Zero page sizes take the package defaults; a
// zero follower limit pair means the default cap too.
func New(pager Pager, opts Options) *Collector {
	if opts.Followers.PageSize <= 0 {
		opts.Followers.PageSize = DefaultFollowersPage
		if opts.Followers.Cap == 0 {
			opts.Followers.Cap = DefaultFollowersCap
		}
	}
	if opts.Subscriptions.PageSize <= 0 {
		opts.Subscriptions.PageSize = DefaultSubscriptionsPage
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{pager: pager, opts: opts, logger: logger}
}

// Followers returns the follower keys of key in API order.
func (c *Collector) Followers(ctx context.Context, key graph.Key) []graph.Key {
	ids := collect(ctx, c.opts.Followers, func(offset, count int) ([]int64, error) {
		return c.pager.FollowersPage(ctx, key.SourceID(), offset, count)
	}, c.failed("users.getFollowers", key))

	keys := make([]graph.Key, len(ids))
	for i, id := range ids {
		keys[i] = graph.PersonKey(id)
	}
	return keys
}

// Subscriptions returns the identities and groups key is subscribed to, in
// API order. Items that are neither profiles nor groups are dropped.
func (c *Collector) Subscriptions(ctx context.Context, key graph.Key) ([]graph.Key, []vk.Group) {
	items := collect(ctx, c.opts.Subscriptions, func(offset, count int) ([]vk.SubscriptionItem, error) {
		return c.pager.SubscriptionsPage(ctx, key.SourceID(), offset, count)
	}, c.failed("users.getSubscriptions", key))

	var people []graph.Key
	var groups []vk.Group
	for _, it := range items {
		switch it.Kind() {
		case vk.TypeProfile:
			people = append(people, graph.PersonKey(it.ID))
		case vk.TypeGroup:
			groups = append(groups, it.Group())
		}
	}
	return people, groups
}

func (c *Collector) failed(method string, key graph.Key) func(int, int, error) {
	return func(offset, gathered int, err error) {
		c.logger.Warn("page failed", "method", method, "key", key, "offset", offset, "gathered", gathered, "err", err)
	}
}

// collect drives the offset loop shared by both lists.
func collect[T any](ctx context.Context, lim Limits, page func(offset, count int) ([]T, error), onErr func(offset, gathered int, err error)) []T {
	var out []T
	for offset := 0; ; offset += lim.PageSize {
		if ctx.Err() != nil {
			onErr(offset, len(out), ctx.Err())
			return out
		}
		items, err := page(offset, lim.PageSize)
		if err != nil {
			onErr(offset, len(out), err)
			return out
		}
		out = append(out, items...)
		if lim.Cap > 0 && len(out) >= lim.Cap {
			return out[:lim.Cap]
		}
		if len(items) < lim.PageSize {
			return out
		}
	}
}
