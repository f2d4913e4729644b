// Package cache provides byte-oriented caches that outlive a single crawl.
//
// The identity resolver keeps its hot set in an in-process LRU; a [Cache]
// sits behind it as an optional second level so repeated runs against the
// same part of the social graph do not re-download identity attributes.
//
// Implementations:
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: JSON files under ~/.cache/vkgraph for CLI use
//   - [RedisCache]: shared cache for several crawler instances
//
// Entries are opaque bytes with a TTL. Callers namespace their keys with
// the helpers in this package (see [IdentityKey]).
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache stores opaque values with an expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// GetJSON reads key and decodes it into v. It reports whether v was filled.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
