package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/vkgraph/pkg/config"
	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
	"github.com/matzehuels/vkgraph/pkg/graph/memory"
	"github.com/matzehuels/vkgraph/pkg/vk"
	"github.com/matzehuels/vkgraph/pkg/vk/vktest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.API.Token = "token"
	cfg.API.Retry.Attempts = 1
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	cfg.Sink.Backend = backend.Memory
	return cfg
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, name := range []string{"crawl", "export", "load", "stats", "cache", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCrawlOptsApply(t *testing.T) {
	cfg := testConfig(t)
	opts := crawlOpts{maxDepth: 3, sink: "sqlite"}
	opts.apply(cfg)

	if cfg.Crawl.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.Crawl.MaxDepth)
	}
	if cfg.Crawl.Workers != 10 {
		t.Errorf("Workers = %d, unset flag should keep 10", cfg.Crawl.Workers)
	}
	if cfg.Sink.Backend != "sqlite" {
		t.Errorf("Sink.Backend = %q, want sqlite", cfg.Sink.Backend)
	}
}

func TestCrawlRejectsMissingToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Token = ""

	c := New(&bytes.Buffer{}, LogInfo)
	err := c.runCrawl(t.Context(), cfg, "1", crawlOpts{})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("runCrawl error = %v, want INVALID_CONFIG", err)
	}
}

func TestWriteExport(t *testing.T) {
	mem := memory.New()
	ctx := t.Context()
	_ = mem.UpsertIdentity(ctx, graph.Identity{Key: 1, Name: "Pavel Durov", Handle: "durov"})
	_ = mem.UpsertGroup(ctx, graph.Group{Key: -7, Name: "VK Team"})
	_ = mem.UpsertEdge(ctx, graph.Edge{From: 1, To: -7, Relation: graph.Subscribe})

	dir := t.TempDir()

	path := filepath.Join(dir, "out.dot")
	if err := writeExport(ctx, mem, path, "dot"); err != nil {
		t.Fatalf("writeExport(.dot): %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph") {
		t.Errorf("DOT export missing digraph header:\n%s", data)
	}

	err = writeExport(ctx, mem, filepath.Join(dir, "out.png"), "dot")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("writeExport(.png) error = %v, want UNSUPPORTED", err)
	}
}

func TestExportTee(t *testing.T) {
	mem := memory.New()

	sink, got := exportTee(mem, "")
	if got != nil || sink != graph.Sink(mem) {
		t.Error("no output should crawl straight into the store")
	}

	if _, got := exportTee(mem, "x.svg"); got != mem {
		t.Error("memory store should be exported directly")
	}
}

func TestQueryStats(t *testing.T) {
	mem := memory.New()
	ctx := t.Context()
	for _, id := range []graph.Key{1, 2, 3} {
		_ = mem.UpsertIdentity(ctx, graph.Identity{Key: id, Name: "user" + id.String()})
	}
	_ = mem.UpsertGroup(ctx, graph.Group{Key: -10, Name: "news"})
	_ = mem.UpsertEdge(ctx, graph.Edge{From: 2, To: 1, Relation: graph.Follow})
	_ = mem.UpsertEdge(ctx, graph.Edge{From: 3, To: 1, Relation: graph.Follow})
	_ = mem.UpsertEdge(ctx, graph.Edge{From: 2, To: -10, Relation: graph.Subscribe})
	_ = mem.UpsertEdge(ctx, graph.Edge{From: 3, To: -10, Relation: graph.Subscribe})

	rep, err := queryStats(ctx, mem, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Counts.Identities != 3 || rep.Counts.Groups != 1 {
		t.Errorf("Counts = %+v", rep.Counts)
	}
	if len(rep.Users) == 0 || rep.Users[0].Key != 1 || rep.Users[0].Count != 2 {
		t.Errorf("Users = %+v, want user 1 with 2 followers first", rep.Users)
	}
	if len(rep.Pairs) != 1 {
		t.Errorf("Pairs = %+v, want one shared pair", rep.Pairs)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"Новости дня", 5, "Ново…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestRankedRows(t *testing.T) {
	rows := rankedRows([]graph.Ranked{{Key: 1, Name: "a", Count: 9}, {Key: -2, Name: "g", Count: 4}})
	if len(rows) != 2 || rows[0][0] != "1" || rows[1][2] != "-2" || rows[1][3] != "4" {
		t.Errorf("rankedRows = %v", rows)
	}
}

func TestRunCrawlExportsDOT(t *testing.T) {
	s := vktest.NewServer()
	defer s.Close()
	s.AddUser(vk.User{ID: 1, FirstName: "Seed", LastName: "User", ScreenName: "seed"})
	s.AddUsers(2)
	s.SetFollowers(1, 2)
	s.SetSubscriptions(1, vktest.Community(10, "Gophers"))

	cfg := testConfig(t)
	cfg.API.BaseURL = s.BaseURL()
	cfg.Crawl.MaxDepth = 1

	out := filepath.Join(t.TempDir(), "graph.dot")
	c := New(&bytes.Buffer{}, LogInfo)
	if err := c.runCrawl(t.Context(), cfg, "seed", crawlOpts{output: out}); err != nil {
		t.Fatalf("runCrawl: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Seed User", "Gophers"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("export missing %q:\n%s", want, data)
		}
	}
}

func TestRunCrawlUnknownSeed(t *testing.T) {
	s := vktest.NewServer()
	defer s.Close()

	cfg := testConfig(t)
	cfg.API.BaseURL = s.BaseURL()

	c := New(&bytes.Buffer{}, LogInfo)
	err := c.runCrawl(t.Context(), cfg, "nobody", crawlOpts{})
	if !errors.Is(err, errors.ErrCodeInvalidSeed) {
		t.Fatalf("runCrawl error = %v, want INVALID_SEED", err)
	}
}
