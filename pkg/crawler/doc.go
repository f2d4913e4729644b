// Package crawler walks the VK social graph breadth-first from a seed and
// writes what it finds into a [graph.Sink].
//
// # Model
//
// A run starts with the seed at depth 0. For every dispatched identity the
// crawler resolves it, upserts it, and, while its depth is below
// [Options.MaxDepth], collects its followers and subscriptions:
//
//   - each follower f yields Follow(f -> current) and is admitted at depth+1
//   - each subscribed person p yields Subscribe(current -> p) and is
//     admitted at depth+1
//   - each subscribed group g is upserted under its negated key and yields
//     Subscribe(current -> -g); groups are never traversed
//
// # Concurrency
//
// A single coordinator goroutine owns the frontier queue and the visited
// set. A fixed pool of workers receives frontier items over a jobs channel
// and sends back what they discovered over a results channel; admission
// happens only in the coordinator, so every key is dispatched at most once
// no matter how many siblings discover it. No lock is held across a network
// call.
//
// Failures are local: an identity that cannot be resolved or a failed sink
// write is logged and counted in [Result], and the rest of the crawl
// proceeds. Only a seed that cannot be resolved fails the run.
//
// Cancelling the context stops dispatch. Items already handed to workers
// observe the cancellation through their network calls and drain.
//
// [graph.Sink]: github.com/matzehuels/vkgraph/pkg/graph.Sink
package crawler
