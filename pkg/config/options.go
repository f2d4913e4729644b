package config

import (
	"github.com/matzehuels/vkgraph/pkg/cache"
	"github.com/matzehuels/vkgraph/pkg/collector"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
	"github.com/matzehuels/vkgraph/pkg/graph/mongo"
	"github.com/matzehuels/vkgraph/pkg/graph/neo4j"
	"github.com/matzehuels/vkgraph/pkg/httputil"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// Client returns the remote client settings. Hooks are left to the caller.
func (c *Config) Client() vk.Config {
	return vk.Config{
		BaseURL:  c.API.BaseURL,
		Token:    c.API.Token,
		Version:  c.API.Version,
		Lang:     c.API.Lang,
		Timeout:  c.API.Timeout,
		PoolSize: c.API.PoolSize,
		Retry: httputil.Policy{
			Attempts: c.API.Retry.Attempts,
			Delay:    c.API.Retry.Delay,
			MaxDelay: c.API.Retry.MaxDelay,
		},
	}
}

// Collector returns the pagination limits.
func (c *Config) Collector() collector.Options {
	return collector.Options{
		Followers:     collector.Limits{PageSize: c.Crawl.FollowersPage, Cap: c.Crawl.FollowersCap},
		Subscriptions: collector.Limits{PageSize: c.Crawl.SubscriptionsPage, Cap: c.Crawl.SubscriptionsCap},
	}
}

// CacheOptions returns the second-level cache settings.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis:   cache.RedisConfig(c.Cache.Redis),
	}
}

// SinkOptions returns the graph store settings.
func (c *Config) SinkOptions() backend.Options {
	return backend.Options{
		Backend: c.Sink.Backend,
		SQLite:  c.Sink.SQLite,
		Neo4j:   neo4j.Config(c.Sink.Neo4j),
		Mongo:   mongo.Config(c.Sink.Mongo),
	}
}

// Redacted returns a copy of c with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	out.API.Token = mask(c.API.Token)
	out.Cache.Redis.Password = mask(c.Cache.Redis.Password)
	out.Sink.Neo4j.Password = mask(c.Sink.Neo4j.Password)
	return &out
}
