package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vkgraph/pkg/cache"
	"github.com/matzehuels/vkgraph/pkg/collector"
	"github.com/matzehuels/vkgraph/pkg/config"
	"github.com/matzehuels/vkgraph/pkg/crawler"
	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
	"github.com/matzehuels/vkgraph/pkg/graph/memory"
	"github.com/matzehuels/vkgraph/pkg/graph/snapshot"
	"github.com/matzehuels/vkgraph/pkg/identity"
	"github.com/matzehuels/vkgraph/pkg/observability"
	"github.com/matzehuels/vkgraph/pkg/render"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// crawlOpts holds the command-line flags shared by crawl and export.
// Zero values leave the configuration untouched.
type crawlOpts struct {
	maxDepth    int    // deepest level expanded
	workers     int    // worker pool size
	sink        string // graph store backend
	cache       string // second-level identity cache backend
	output      string // DOT or SVG export path
	layout      string // graphviz layout for SVG export
	metricsAddr string // address of the /metrics endpoint
}

func (o *crawlOpts) register(cmd *cobra.Command, withSink bool) {
	f := cmd.Flags()
	f.IntVarP(&o.maxDepth, "max-depth", "d", 0, "deepest level to expand (default from config: 2)")
	f.IntVarP(&o.workers, "workers", "w", 0, "number of concurrent workers (default from config: 10)")
	f.StringVar(&o.cache, "cache", "", "identity cache backend: none, file, redis")
	f.StringVar(&o.layout, "layout", string(render.LayoutSfdp), "graphviz layout for SVG export: dot, sfdp, circo")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the crawl")
	if withSink {
		f.StringVarP(&o.sink, "sink", "s", "", "graph store: "+strings.Join(backend.Names, ", "))
		f.StringVarP(&o.output, "output", "o", "", "also export the crawled graph to a .dot, .json or .svg file")
	}
}

// apply copies explicitly set flags over cfg.
func (o *crawlOpts) apply(cfg *config.Config) {
	if o.maxDepth != 0 {
		cfg.Crawl.MaxDepth = o.maxDepth
	}
	if o.workers != 0 {
		cfg.Crawl.Workers = o.workers
	}
	if o.sink != "" {
		cfg.Sink.Backend = o.sink
	}
	if o.cache != "" {
		cfg.Cache.Backend = o.cache
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}
}

// crawlCommand creates the crawl command.
func (c *CLI) crawlCommand() *cobra.Command {
	var opts crawlOpts

	cmd := &cobra.Command{
		Use:   "crawl [seed]",
		Short: "Crawl the social graph around a seed user",
		Long: `Crawl starts from a seed user (numeric id, screen name or profile URL),
resolves followers and subscriptions breadth-first up to --max-depth and
writes users, groups and Follow/Subscribe relations into the graph store.

Without a seed argument the seed is asked for interactively, or taken from
the configuration when stdin is not a terminal.`,
		Example: `  vkgraph crawl durov
  vkgraph crawl https://vk.com/id1 --max-depth 1 --sink sqlite
  vkgraph crawl 1 -o graph.svg --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cfg)

			seed, err := c.seedArg(cmd.Context(), args, cfg.Crawl.Seed)
			if err != nil {
				return err
			}
			return c.runCrawl(cmd.Context(), cfg, seed, opts)
		},
	}
	opts.register(cmd, true)
	return cmd
}

// runCrawl wires the client, identity cache, collector and sink and runs one
// traversal from seed.
func (c *CLI) runCrawl(ctx context.Context, cfg *config.Config, seed string, opts crawlOpts) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewPrometheus(reg)
	if cfg.Metrics.Addr != "" {
		stop, err := serveMetrics(cfg.Metrics.Addr, reg, component(c.Logger, "metrics"))
		if err != nil {
			return err
		}
		defer stop()
	}

	idCache, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "open identity cache")
	}
	defer idCache.Close()

	clientCfg := cfg.Client()
	clientCfg.Hooks = metrics
	client := vk.NewClient(clientCfg)

	resolver, err := identity.New(client, identity.Options{
		Size:   cfg.Cache.Size,
		Store:  idCache,
		TTL:    cfg.Cache.TTL,
		Logger: component(c.Logger, "identity"),
		Hooks:  metrics,
	})
	if err != nil {
		return err
	}

	colOpts := cfg.Collector()
	colOpts.Logger = component(c.Logger, "collector")
	col := collector.New(client, colOpts)

	spin := newSpinnerWithContext(ctx, "Connecting to "+cfg.Sink.Backend+"...")
	spin.Start()
	store, err := backend.Open(ctx, cfg.SinkOptions())
	if err != nil {
		spin.StopWithError("Graph store unavailable")
		return err
	}
	spin.Stop()
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("close graph store", "err", err)
		}
	}()

	sink, mem := exportTee(store, opts.output)

	user, err := resolver.ResolveSeed(ctx, seed)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSeed, err, "resolve seed %q", seed)
	}
	c.Logger.Info("seed resolved", "id", user.ID, "name", strings.TrimSpace(user.FirstName+" "+user.LastName))

	cr := crawler.New(resolver, col, sink, crawler.Options{
		MaxDepth: cfg.Crawl.MaxDepth,
		Workers:  cfg.Crawl.Workers,
		Hooks:    metrics,
		Logger:   component(c.Logger, "crawler"),
	})
	res, err := cr.Run(ctx, graph.PersonKey(user.ID))
	if err != nil {
		return err
	}

	printCrawlResult(res, resolver.Stats())
	if mem != nil && !res.Cancelled {
		if err := writeExport(ctx, mem, opts.output, opts.layout); err != nil {
			return err
		}
		printFile(opts.output)
	}
	if res.Cancelled {
		return ctx.Err()
	}
	if cfg.Sink.Backend != backend.Memory {
		printNextStep("Inspect the graph", "vkgraph stats --sink "+cfg.Sink.Backend)
	}
	return nil
}

// exportTee returns the sink to crawl into and the in-memory store to
// export from, or a nil store when there is nothing to export.
func exportTee(store backend.Store, output string) (graph.Sink, *memory.Store) {
	if output == "" {
		return store, nil
	}
	if mem, ok := store.(*memory.Store); ok {
		return mem, mem
	}
	mem := memory.New()
	return graph.Tee{store, mem}, mem
}

// writeExport writes mem to path as DOT, JSON snapshot or SVG depending on
// the extension.
func writeExport(ctx context.Context, mem *memory.Store, path, layoutName string) error {
	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		data = []byte(mem.ToDOT())
	case ".json":
		var buf bytes.Buffer
		if err := snapshot.WriteJSON(mem, &buf); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
		}
		data = buf.Bytes()
	case ".svg":
		layout, err := render.ParseLayout(layoutName)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout")
		}
		if data, err = render.RenderSVG(ctx, mem.ToDOT(), layout); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported export format %q (want .dot, .json or .svg)", ext)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
