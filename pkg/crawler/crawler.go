package crawler

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/observability"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// Defaults used when the corresponding [Options] field is zero.
const (
	DefaultMaxDepth = 2
	DefaultWorkers  = 10
)

// Resolver turns a person key into a user. *identity.Resolver satisfies it.
type Resolver interface {
	Lookup(ctx context.Context, key graph.Key) (*vk.User, error)
}

// Collector gathers adjacency lists. *collector.Collector satisfies it.
type Collector interface {
	Followers(ctx context.Context, key graph.Key) []graph.Key
	Subscriptions(ctx context.Context, key graph.Key) ([]graph.Key, []vk.Group)
}

// Options configures a [Crawler].
type Options struct {
	MaxDepth int                      // Deepest level expanded (default: 2, levels 0..2)
	Workers  int                      // Worker pool size (default: 10)
	Hooks    observability.CrawlHooks // Metrics hooks (optional)
	Logger   *log.Logger              // nil discards
}

// WithDefaults returns a copy of o with zero fields set to defaults.
func (o Options) WithDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	o.Hooks = observability.CrawlOrNoop(o.Hooks)
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Result summarizes a finished run.
type Result struct {
	RunID        string        `json:"run_id"`
	Seed         graph.Key     `json:"seed"`
	Dispatched   int           `json:"dispatched"`     // frontier items handed to workers
	Resolved     int           `json:"resolved"`       // items whose identity resolved
	Unresolved   int           `json:"unresolved"`     // items dropped after a failed lookup
	Identities   int           `json:"identities"`     // identities written to the sink
	Groups       int           `json:"groups"`         // distinct groups written to the sink
	Edges        int           `json:"edges"`          // edge upserts that succeeded
	SinkErrors   int           `json:"sink_errors"`    // failed sink writes
	MaxDepthSeen int           `json:"max_depth_seen"` // deepest dispatched level
	Cancelled    bool          `json:"cancelled"`      // dispatch stopped by ctx
	Duration     time.Duration `json:"duration"`
}

// Crawler runs depth-bounded traversals. A Crawler may run several
// traversals one after another; each run has its own visited set.
type Crawler struct {
	resolver  Resolver
	collector Collector
	sink      graph.Sink
	opts      Options
}

// New creates a Crawler.
func New(r Resolver, c Collector, sink graph.Sink, opts Options) *Crawler {
	return &Crawler{resolver: r, collector: c, sink: sink, opts: opts.WithDefaults()}
}

// Run crawls from seed until the frontier is exhausted. It returns an error
// only when the seed itself cannot be resolved; every other failure is
// counted in the result.
func (c *Crawler) Run(ctx context.Context, seed graph.Key) (*Result, error) {
	r := &run{
		ctx:     ctx,
		c:       c,
		log:     c.opts.Logger,
		hooks:   c.opts.Hooks,
		visited: make(map[graph.Key]bool),
		groups:  make(map[graph.Key]bool),
		jobs:    make(chan job),
		results: make(chan result, c.opts.Workers),
		res:     &Result{RunID: uuid.NewString(), Seed: seed},
	}
	return r.run(seed)
}

type job struct {
	key   graph.Key
	depth int
}

type result struct {
	job
	err        error
	resolved   bool
	identity   bool
	groups     []graph.Key
	children   []graph.Key
	edges      int
	sinkErrors int
}

// run holds the state of one traversal. Everything except the channels and
// the wait group is owned by the coordinator goroutine.
type run struct {
	ctx   context.Context
	c     *Crawler
	log   *log.Logger
	hooks observability.CrawlHooks

	jobs    chan job
	results chan result
	wg      sync.WaitGroup

	queue   []job
	visited map[graph.Key]bool
	groups  map[graph.Key]bool
	pending int
	res     *Result
}

func (r *run) run(seed graph.Key) (*Result, error) {
	start := time.Now()
	r.log.Info("crawl started", "run", r.res.RunID, "seed", seed, "max_depth", r.c.opts.MaxDepth, "workers", r.c.opts.Workers)

	for range r.c.opts.Workers {
		r.wg.Add(1)
		go r.worker()
	}

	r.admit(job{key: seed})
	err := r.coordinate(seed)

	close(r.jobs)
	r.wg.Wait()

	r.res.Duration = time.Since(start)
	if err != nil {
		return r.res, err
	}
	r.log.Info("crawl finished",
		"run", r.res.RunID,
		"identities", r.res.Identities,
		"groups", r.res.Groups,
		"edges", r.res.Edges,
		"unresolved", r.res.Unresolved,
		"elapsed", r.res.Duration.Round(time.Millisecond))
	return r.res, nil
}

// coordinate dispatches queued items and folds results until nothing is
// queued or in flight.
func (r *run) coordinate(seed graph.Key) error {
	var seedErr error
	done := r.ctx.Done()

	for r.pending > 0 {
		var out chan<- job
		var next job
		if len(r.queue) > 0 {
			out = r.jobs
			next = r.queue[0]
		}

		select {
		case out <- next:
			r.queue = r.queue[1:]
			r.res.Dispatched++
			r.res.MaxDepthSeen = max(r.res.MaxDepthSeen, next.depth)
			r.hooks.OnDispatch(r.ctx, next.depth)
			r.hooks.OnFrontier(r.ctx, len(r.queue))

		case res := <-r.results:
			r.pending--
			if err := r.handle(res, seed); err != nil {
				seedErr = err
			}

		case <-done:
			done = nil
			r.res.Cancelled = true
			r.pending -= len(r.queue)
			r.log.Warn("crawl cancelled", "run", r.res.RunID, "dropped", len(r.queue), "err", r.ctx.Err())
			r.queue = nil
			r.hooks.OnFrontier(r.ctx, 0)
		}
	}
	return seedErr
}

// admit inserts j into the visited set and queues it. It reports false when
// the key was already admitted.
func (r *run) admit(j job) bool {
	if r.visited[j.key] {
		return false
	}
	r.visited[j.key] = true
	r.pending++
	r.queue = append(r.queue, j)
	return true
}

func (r *run) handle(res result, seed graph.Key) error {
	r.res.Edges += res.edges
	r.res.SinkErrors += res.sinkErrors
	if res.identity {
		r.res.Identities++
	}
	for _, g := range res.groups {
		if !r.groups[g] {
			r.groups[g] = true
			r.res.Groups++
		}
	}

	if !res.resolved {
		r.res.Unresolved++
		if res.key == seed && res.depth == 0 {
			return errors.Wrap(errors.ErrCodeInvalidSeed, res.err, "resolve seed %s", seed)
		}
		r.log.Warn("identity skipped", "key", res.key, "depth", res.depth, "err", res.err)
		return nil
	}
	r.res.Resolved++

	if r.res.Cancelled {
		return nil
	}
	for _, k := range res.children {
		r.admit(job{key: k, depth: res.depth + 1})
	}
	r.hooks.OnFrontier(r.ctx, len(r.queue))
	return nil
}

func (r *run) worker() {
	defer r.wg.Done()
	for j := range r.jobs {
		r.results <- r.process(j)
	}
}

// process resolves one frontier item, writes it and its edges, and returns
// the keys it discovered.
func (r *run) process(j job) (res result) {
	start := time.Now()
	res.job = j
	defer func() {
		r.hooks.OnItemDone(r.ctx, j.depth, res.resolved, time.Since(start))
	}()

	u, err := r.c.resolver.Lookup(r.ctx, j.key)
	if err != nil {
		res.err = err
		return res
	}
	res.resolved = true
	r.log.Debug("resolved", "key", j.key, "depth", j.depth, "name", u.FirstName+" "+u.LastName)

	if err := r.c.sink.UpsertIdentity(r.ctx, u.Identity()); err != nil {
		r.sinkError(&res, "identity", j.key, err)
	} else {
		res.identity = true
	}

	if j.depth >= r.c.opts.MaxDepth {
		return res
	}

	for _, f := range r.c.collector.Followers(r.ctx, j.key) {
		r.edge(&res, graph.Edge{From: f, To: j.key, Relation: graph.Follow})
		res.children = append(res.children, f)
	}

	people, groups := r.c.collector.Subscriptions(r.ctx, j.key)
	for _, p := range people {
		r.edge(&res, graph.Edge{From: j.key, To: p, Relation: graph.Subscribe})
		res.children = append(res.children, p)
	}
	for _, g := range groups {
		node := g.Node()
		if err := r.c.sink.UpsertGroup(r.ctx, node); err != nil {
			r.sinkError(&res, "group", node.Key, err)
			continue
		}
		res.groups = append(res.groups, node.Key)
		r.edge(&res, graph.Edge{From: j.key, To: node.Key, Relation: graph.Subscribe})
	}
	return res
}

func (r *run) edge(res *result, e graph.Edge) {
	if err := r.c.sink.UpsertEdge(r.ctx, e); err != nil {
		r.sinkError(res, "edge", e.From, err)
		return
	}
	res.edges++
}

func (r *run) sinkError(res *result, op string, key graph.Key, err error) {
	res.sinkErrors++
	r.hooks.OnSinkError(r.ctx, op, err)
	r.log.Warn("sink write failed", "op", op, "key", key, "err", err)
}
