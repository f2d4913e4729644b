package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/vkgraph/pkg/cache"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/observability"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// DefaultSize is the LRU capacity used when Options.Size is zero.
const DefaultSize = 1000

// ErrUnresolvable is returned when an identity was already found to be
// unresolvable.
var ErrUnresolvable = errors.New("identity is unresolvable")

// Source performs the remote lookup. *vk.Client satisfies it.
type Source interface {
	User(ctx context.Context, id string) (*vk.User, error)
}

// Options configures a [Resolver].
type Options struct {
	Size   int                      // LRU capacity (default: DefaultSize)
	Store  cache.Cache              // optional second level
	TTL    time.Duration            // second-level entry lifetime (0 = no expiry)
	Logger *log.Logger              // nil discards
	Hooks  observability.CacheHooks // optional metrics hooks
}

// entry is an LRU value. A nil user marks a definitive failure.
type entry struct {
	user *vk.User
}

// Resolver maps keys to users. It is safe for concurrent use.
type Resolver struct {
	src    Source
	lru    *lru.Cache[graph.Key, entry]
	group  singleflight.Group
	store  cache.Cache
	ttl    time.Duration
	logger *log.Logger
	hooks  observability.CacheHooks

	hits   atomic.Int64
	misses atomic.Int64
	remote atomic.Int64
}

// Stats reports resolver activity.
type Stats struct {
	Hits    int64 // answered from memory or the second level
	Misses  int64 // required a remote call
	Remote  int64 // remote calls actually issued
	Entries int   // current LRU size
}

// New creates a Resolver backed by src.
func New(src Source, opts Options) (*Resolver, error) {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[graph.Key, entry](size)
	if err != nil {
		return nil, fmt.Errorf("identity cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	store := opts.Store
	if store == nil {
		store = cache.NewNullCache()
	}
	return &Resolver{
		src:    src,
		lru:    c,
		store:  store,
		ttl:    opts.TTL,
		logger: logger,
		hooks:  observability.CacheOrNoop(opts.Hooks),
	}, nil
}

// Resolve returns the user for key. ok is false when the identity cannot be
// resolved; the reason is logged. Group keys never resolve.
func (r *Resolver) Resolve(ctx context.Context, key graph.Key) (*vk.User, bool) {
	u, err := r.Lookup(ctx, key)
	if err != nil {
		r.logger.Warn("unresolved identity", "key", key, "err", err)
		return nil, false
	}
	return u, true
}

// Lookup is [Resolver.Resolve] with the error returned to the caller.
func (r *Resolver) Lookup(ctx context.Context, key graph.Key) (*vk.User, error) {
	if key.IsGroup() || key == 0 {
		return nil, fmt.Errorf("%w: %s is not a person key", ErrUnresolvable, key)
	}
	if e, ok := r.lru.Get(key); ok {
		r.hits.Add(1)
		r.hooks.OnCacheHit(ctx, "memory")
		return e.result(key)
	}
	r.hooks.OnCacheMiss(ctx, "memory")

	v, err, _ := r.group.Do(strconv.FormatInt(int64(key), 10), func() (any, error) {
		if e, ok := r.lru.Peek(key); ok {
			return e, nil
		}
		return r.fetch(ctx, key, strconv.FormatInt(key.SourceID(), 10))
	})
	if err != nil {
		return nil, err
	}
	return v.(entry).result(key)
}

// ResolveSeed resolves a numeric id or a screen name and caches the result
// under the numeric key.
func (r *Resolver) ResolveSeed(ctx context.Context, ident string) (*vk.User, error) {
	if id, err := strconv.ParseInt(ident, 10, 64); err == nil {
		return r.Lookup(ctx, graph.PersonKey(id))
	}
	r.misses.Add(1)
	r.remote.Add(1)
	u, err := r.src.User(ctx, ident)
	if err != nil {
		return nil, err
	}
	key := graph.PersonKey(u.ID)
	r.lru.Add(key, entry{user: u})
	r.persist(ctx, key, u)
	return u, nil
}

// fetch consults the second level and then the remote source. Definitive
// failures are remembered; transport failures are not.
func (r *Resolver) fetch(ctx context.Context, key graph.Key, ident string) (entry, error) {
	var stored vk.User
	if ok, err := cache.GetJSON(ctx, r.store, cache.IdentityKey(key.SourceID()), &stored); err != nil {
		r.logger.Debug("identity store read failed", "key", key, "err", err)
	} else if ok {
		r.hits.Add(1)
		r.hooks.OnCacheHit(ctx, "store")
		e := entry{user: &stored}
		r.lru.Add(key, e)
		return e, nil
	}
	r.hooks.OnCacheMiss(ctx, "store")

	r.misses.Add(1)
	r.remote.Add(1)
	u, err := r.src.User(ctx, ident)
	switch {
	case err == nil:
		e := entry{user: u}
		r.lru.Add(key, e)
		r.persist(ctx, key, u)
		return e, nil
	case vk.IsRestricted(err):
		r.logger.Debug("identity restricted", "key", key, "err", err)
		e := entry{}
		r.lru.Add(key, e)
		return e, nil
	case definitive(err):
		r.logger.Info("identity not found", "key", key, "err", err)
		e := entry{}
		r.lru.Add(key, e)
		return e, nil
	default:
		return entry{}, err
	}
}

func (r *Resolver) persist(ctx context.Context, key graph.Key, u *vk.User) {
	if err := cache.SetJSON(ctx, r.store, cache.IdentityKey(key.SourceID()), u, r.ttl); err != nil {
		r.logger.Debug("identity store write failed", "key", key, "err", err)
	}
}

func (e entry) result(key graph.Key) (*vk.User, error) {
	if e.user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvable, key)
	}
	return e.user, nil
}

// definitive reports whether err is an answer from the API rather than a
// failure to reach it.
func definitive(err error) bool {
	return vk.IsAPIError(err) || errors.Is(err, vk.ErrNotFound)
}

// Stats returns a snapshot of resolver counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
		Remote:  r.remote.Load(),
		Entries: r.lru.Len(),
	}
}
