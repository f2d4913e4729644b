// Package identity resolves user ids to VK identities through a bounded
// in-memory LRU.
//
// A [Resolver] performs at most one users.get call per key for as long as
// the entry stays in the LRU. Both successful lookups and definitive
// failures (an API error or an empty answer) are remembered, so a user that
// cannot be resolved is not asked for again. Transport failures are not
// remembered and the next request retries them.
//
// An optional second-level [cache.Cache] keeps successful lookups across
// runs. Concurrent misses for the same key share one remote call.
//
// [cache.Cache]: github.com/matzehuels/vkgraph/pkg/cache.Cache
package identity
