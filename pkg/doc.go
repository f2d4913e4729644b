// Package pkg provides the libraries behind vkgraph, a crawler that turns
// the VK social graph around a seed user into a property graph.
//
// # Overview
//
// Data flows from the API through the crawler into a graph store:
//
//	VK API ──► vk.Client ──► identity.Resolver ─┐
//	                     └─► collector.Collector ┼─► crawler.Crawler ──► graph.Sink
//	                                             │
//	          cache.Cache (file, redis) ◄────────┘
//
// # Packages
//
//   - [vk]: HTTP client for users.get, users.getFollowers and
//     users.getSubscriptions, with retry on transient failures
//   - [identity]: bounded LRU of resolved users with an optional
//     persistent second level and request coalescing
//   - [collector]: paginated follower and subscription collection
//   - [crawler]: bounded-depth breadth-first traversal on a fixed
//     worker pool
//   - [graph]: keys, nodes, edges and the Sink/Querier contracts, with
//     memory, sqlite, neo4j and mongo backends
//   - [render]: SVG rendering of exported graphs via Graphviz
//   - [config], [errors], [observability], [httputil], [buildinfo]:
//     ambient support
//
// # Quick Start
//
//	client := vk.NewClient(vk.Config{Token: token})
//	res, _ := identity.New(client, identity.Options{})
//	col := collector.New(client, collector.Options{})
//	store := memory.New()
//
//	seed, _ := res.ResolveSeed(ctx, "durov")
//	result, err := crawler.New(res, col, store, crawler.Options{}).
//	    Run(ctx, graph.PersonKey(seed.ID))
//
// [vk]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/vk
// [identity]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/identity
// [collector]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/collector
// [crawler]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/crawler
// [graph]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/render
// [config]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/vkgraph/pkg/buildinfo
package pkg
