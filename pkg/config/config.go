// Package config loads vkgraph settings.
//
// Settings are layered, later layers winning:
//
//  1. [Default]
//  2. a TOML file (see [DefaultPath])
//  3. a .env file in the working directory, then the process environment
//  4. command-line flags, applied by the CLI
//
// The access token is normally supplied through VK_TOKEN rather than the
// file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/vkgraph/pkg/cache"
	"github.com/matzehuels/vkgraph/pkg/collector"
	"github.com/matzehuels/vkgraph/pkg/crawler"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
	"github.com/matzehuels/vkgraph/pkg/graph/mongo"
	"github.com/matzehuels/vkgraph/pkg/httputil"
	"github.com/matzehuels/vkgraph/pkg/identity"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// Environment variables read by [Load].
const (
	EnvToken         = "VK_TOKEN"
	EnvAPIURL        = "VK_API_URL"
	EnvNeo4jURL      = "NEO4J_BOLT_URL"
	EnvNeo4jUsername = "NEO4J_USERNAME"
	EnvNeo4jPassword = "NEO4J_PASSWORD"
	EnvMongoURI      = "MONGO_URI"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvSink          = "VKGRAPH_SINK"
	EnvMaxDepth      = "VKGRAPH_MAX_DEPTH"
	EnvWorkers       = "VKGRAPH_WORKERS"
)

// DefaultSeed is crawled when no seed is given.
const DefaultSeed = "dm"

// Config is the complete application configuration.
type Config struct {
	API     API     `toml:"api"`
	Crawl   Crawl   `toml:"crawl"`
	Cache   Cache   `toml:"cache"`
	Sink    Sink    `toml:"sink"`
	Metrics Metrics `toml:"metrics"`
}

// API configures the remote client.
type API struct {
	BaseURL  string        `toml:"base_url"`
	Token    string        `toml:"token"`
	Version  string        `toml:"version"`
	Lang     string        `toml:"lang"`
	Timeout  time.Duration `toml:"timeout"`
	PoolSize int           `toml:"pool_size"`
	Retry    Retry         `toml:"retry"`
}

// Retry configures backoff for transient API failures.
type Retry struct {
	Attempts int           `toml:"attempts"`
	Delay    time.Duration `toml:"delay"`
	MaxDelay time.Duration `toml:"max_delay"`
}

// Crawl configures the traversal.
type Crawl struct {
	Seed              string `toml:"seed"`
	MaxDepth          int    `toml:"max_depth"`
	Workers           int    `toml:"workers"`
	FollowersPage     int    `toml:"followers_page"`
	FollowersCap      int    `toml:"followers_cap"`
	SubscriptionsPage int    `toml:"subscriptions_page"`
	SubscriptionsCap  int    `toml:"subscriptions_cap"`
}

// Cache configures the identity cache.
type Cache struct {
	Size    int           `toml:"size"`
	Backend string        `toml:"backend"` // none, file or redis
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
	Redis   Redis         `toml:"redis"`
}

// Redis configures the redis second-level cache.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Sink configures the graph store.
type Sink struct {
	Backend string `toml:"backend"`
	SQLite  string `toml:"sqlite"`
	Neo4j   Neo4j  `toml:"neo4j"`
	Mongo   Mongo  `toml:"mongo"`
}

// Neo4j configures the neo4j sink.
type Neo4j struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// Mongo configures the mongo sink.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Metrics configures the metrics endpoint.
type Metrics struct {
	Addr string `toml:"addr"` // empty disables the endpoint
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultDataDir()
	return &Config{
		API: API{
			BaseURL:  vk.DefaultBaseURL,
			Version:  vk.DefaultVersion,
			Lang:     vk.DefaultLang,
			Timeout:  vk.DefaultTimeout,
			PoolSize: vk.DefaultPoolSize,
			Retry: Retry{
				Attempts: httputil.DefaultPolicy.Attempts,
				Delay:    httputil.DefaultPolicy.Delay,
				MaxDelay: httputil.DefaultPolicy.MaxDelay,
			},
		},
		Crawl: Crawl{
			Seed:              DefaultSeed,
			MaxDepth:          crawler.DefaultMaxDepth,
			Workers:           crawler.DefaultWorkers,
			FollowersPage:     collector.DefaultFollowersPage,
			FollowersCap:      collector.DefaultFollowersCap,
			SubscriptionsPage: collector.DefaultSubscriptionsPage,
			SubscriptionsCap:  collector.DefaultSubscriptionsCap,
		},
		Cache: Cache{
			Size:    identity.DefaultSize,
			Backend: cache.BackendNone,
			Dir:     filepath.Join(dir, "cache"),
			TTL:     7 * 24 * time.Hour,
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Sink: Sink{
			Backend: backend.Neo4j,
			SQLite:  filepath.Join(dir, "vkgraph.db"),
			Neo4j:   Neo4j{URI: "bolt://localhost:7687", Username: "neo4j"},
			Mongo:   Mongo{URI: "mongodb://localhost:27017", Database: mongo.DefaultDatabase},
		},
	}
}

// DefaultPath returns the config file location, ~/.config/vkgraph/config.toml
// on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vkgraph", "config.toml")
}

// DefaultDataDir returns the directory for caches and local stores.
func DefaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vkgraph")
	}
	return filepath.Join(dir, "vkgraph")
}

// Load builds a configuration from defaults, the file at path, .env and the
// environment. An empty path reads [DefaultPath] if it exists; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvToken, &c.API.Token},
		{EnvAPIURL, &c.API.BaseURL},
		{EnvNeo4jURL, &c.Sink.Neo4j.URI},
		{EnvNeo4jUsername, &c.Sink.Neo4j.Username},
		{EnvNeo4jPassword, &c.Sink.Neo4j.Password},
		{EnvMongoURI, &c.Sink.Mongo.URI},
		{EnvRedisAddr, &c.Cache.Redis.Addr},
		{EnvSink, &c.Sink.Backend},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvMaxDepth, &c.Crawl.MaxDepth},
		{EnvWorkers, &c.Crawl.Workers},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", i.key, v)
		}
		*i.dst = n
	}
	return nil
}
