package config

import (
	"github.com/matzehuels/vkgraph/pkg/cache"
	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
)

// Upper bounds accepted by the API for a single page.
const (
	maxFollowersPage     = 1000
	maxSubscriptionsPage = 200
)

// Validate reports the first setting that would make a crawl fail before
// it starts. Errors carry [errors.ErrCodeInvalidConfig].
func (c *Config) Validate() error {
	switch {
	case c.API.Token == "":
		return invalid("access token is required (set %s)", EnvToken)
	case c.API.BaseURL == "":
		return invalid("api base_url is empty")
	case c.API.Timeout <= 0:
		return invalid("api timeout must be positive, got %s", c.API.Timeout)
	case c.API.PoolSize < 1:
		return invalid("api pool_size must be at least 1, got %d", c.API.PoolSize)
	case c.API.Retry.Attempts < 1:
		return invalid("retry attempts must be at least 1, got %d", c.API.Retry.Attempts)
	case c.API.Retry.Delay < 0:
		return invalid("retry delay must not be negative")
	}
	return c.validateCrawl()
}

func (c *Config) validateCrawl() error {
	cr := c.Crawl
	switch {
	case cr.MaxDepth < 1:
		return invalid("max_depth must be at least 1, got %d", cr.MaxDepth)
	case cr.Workers < 1:
		return invalid("workers must be at least 1, got %d", cr.Workers)
	case cr.FollowersPage < 1 || cr.FollowersPage > maxFollowersPage:
		return invalid("followers_page must be in [1, %d], got %d", maxFollowersPage, cr.FollowersPage)
	case cr.SubscriptionsPage < 1 || cr.SubscriptionsPage > maxSubscriptionsPage:
		return invalid("subscriptions_page must be in [1, %d], got %d", maxSubscriptionsPage, cr.SubscriptionsPage)
	case cr.FollowersCap < 0 || cr.SubscriptionsCap < 0:
		return invalid("caps must not be negative")
	case c.Cache.Size < 1:
		return invalid("cache size must be at least 1, got %d", c.Cache.Size)
	}

	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return invalid("unknown cache backend %q", c.Cache.Backend)
	}
	if !backend.Valid(c.Sink.Backend) {
		return invalid("unknown sink %q", c.Sink.Backend)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}
