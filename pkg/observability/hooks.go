// Package observability provides hooks for metrics around a crawl.
//
// Components accept hook interfaces through their options instead of
// reaching for package-level state, so two crawls in one process can report
// to different backends. Each interface has a no-op implementation that is
// used when nothing is configured.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	m := observability.NewPrometheus(reg)
//	client := vk.NewClient(vk.Config{Token: tok, Hooks: m})
//	c := crawler.New(res, col, sink, crawler.Options{Hooks: m})
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Crawl Hooks
// =============================================================================

// CrawlHooks receives events from the traversal engine.
type CrawlHooks interface {
	// OnDispatch records a frontier item handed to a worker.
	OnDispatch(ctx context.Context, depth int)

	// OnItemDone records a finished frontier item.
	OnItemDone(ctx context.Context, depth int, resolved bool, duration time.Duration)

	// OnSinkError records a failed graph store write.
	OnSinkError(ctx context.Context, op string, err error)

	// OnFrontier records the number of admitted but undispatched items.
	OnFrontier(ctx context.Context, queued int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the identity cache.
type CacheHooks interface {
	// OnCacheHit records a hit at the given level ("memory" or "store").
	OnCacheHit(ctx context.Context, level string)

	// OnCacheMiss records a miss at the given level.
	OnCacheMiss(ctx context.Context, level string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the VK API client.
type HTTPHooks interface {
	// OnResponse records a completed API call. apiErr is true when the
	// response carried an error object.
	OnResponse(ctx context.Context, method string, status int, apiErr bool, duration time.Duration)

	// OnError records a transport failure (timeout, connection error).
	OnError(ctx context.Context, method string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCrawlHooks is a no-op implementation of CrawlHooks.
type NoopCrawlHooks struct{}

func (NoopCrawlHooks) OnDispatch(context.Context, int)                        {}
func (NoopCrawlHooks) OnItemDone(context.Context, int, bool, time.Duration)   {}
func (NoopCrawlHooks) OnSinkError(context.Context, string, error)             {}
func (NoopCrawlHooks) OnFrontier(context.Context, int)                        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, int, bool, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, error)                       {}

// CrawlOrNoop returns h, or a no-op implementation when h is nil.
func CrawlOrNoop(h CrawlHooks) CrawlHooks {
	if h == nil {
		return NoopCrawlHooks{}
	}
	return h
}

// CacheOrNoop returns h, or a no-op implementation when h is nil.
func CacheOrNoop(h CacheHooks) CacheHooks {
	if h == nil {
		return NoopCacheHooks{}
	}
	return h
}

// HTTPOrNoop returns h, or a no-op implementation when h is nil.
func HTTPOrNoop(h HTTPHooks) HTTPHooks {
	if h == nil {
		return NoopHTTPHooks{}
	}
	return h
}
