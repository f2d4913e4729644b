package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	apiRequests  *prometheus.CounterVec
	apiDuration  *prometheus.HistogramVec
	dispatched   *prometheus.CounterVec
	items        *prometheus.CounterVec
	itemDuration prometheus.Histogram
	sinkErrors   *prometheus.CounterVec
	frontier     prometheus.Gauge
	cache        *prometheus.CounterVec
}

// NewPrometheus registers the crawl collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vkgraph_api_requests_total",
			Help: "VK API calls by method and outcome",
		}, []string{"method", "outcome"}),
		apiDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vkgraph_api_request_duration_seconds",
			Help:    "VK API call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"method"}),
		dispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vkgraph_crawl_dispatched_total",
			Help: "Frontier items dispatched to workers by depth",
		}, []string{"depth"}),
		items: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vkgraph_crawl_items_total",
			Help: "Finished frontier items by outcome",
		}, []string{"outcome"}),
		itemDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vkgraph_crawl_item_duration_seconds",
			Help:    "Time to resolve, collect and store one frontier item",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		sinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vkgraph_sink_errors_total",
			Help: "Failed graph store writes by operation",
		}, []string{"op"}),
		frontier: f.NewGauge(prometheus.GaugeOpts{
			Name: "vkgraph_crawl_frontier",
			Help: "Admitted frontier items waiting for a worker",
		}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vkgraph_identity_cache_total",
			Help: "Identity cache lookups by level and result",
		}, []string{"level", "result"}),
	}
}

func (p *Prometheus) OnDispatch(_ context.Context, depth int) {
	p.dispatched.WithLabelValues(strconv.Itoa(depth)).Inc()
}

func (p *Prometheus) OnItemDone(_ context.Context, _ int, resolved bool, d time.Duration) {
	outcome := "resolved"
	if !resolved {
		outcome = "unresolved"
	}
	p.items.WithLabelValues(outcome).Inc()
	p.itemDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnSinkError(_ context.Context, op string, _ error) {
	p.sinkErrors.WithLabelValues(op).Inc()
}

func (p *Prometheus) OnFrontier(_ context.Context, queued int) {
	p.frontier.Set(float64(queued))
}

func (p *Prometheus) OnCacheHit(_ context.Context, level string) {
	p.cache.WithLabelValues(level, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, level string) {
	p.cache.WithLabelValues(level, "miss").Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method string, status int, apiErr bool, d time.Duration) {
	outcome := "ok"
	switch {
	case apiErr:
		outcome = "api_error"
	case status != 200:
		outcome = "http_" + strconv.Itoa(status)
	}
	p.apiRequests.WithLabelValues(method, outcome).Inc()
	p.apiDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method string, _ error) {
	p.apiRequests.WithLabelValues(method, "transport").Inc()
}

var (
	_ CrawlHooks = (*Prometheus)(nil)
	_ CacheHooks = (*Prometheus)(nil)
	_ HTTPHooks  = (*Prometheus)(nil)
)
