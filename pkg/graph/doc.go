// Package graph defines the property-graph model the crawler materializes
// and the contract every graph store implements.
//
// # Keys
//
// Persons and groups share one identifier namespace, [Key]. Person keys are
// the positive VK user id; group keys are the negated VK group id, so user
// 5 and group 5 become keys 5 and -5 and never collide:
//
//	graph.PersonKey(5) // 5
//	graph.GroupKey(5)  // -5
//
// # Sinks
//
// A [Sink] receives three idempotent upserts: identities, groups and typed
// edges. Writing the same value twice must leave the store unchanged apart
// from a full attribute overwrite. Backends live in sub-packages:
//
//   - memory: in-process maps, used for tests and DOT export
//   - neo4j: MERGE-based Cypher writes
//   - mongo: upserting documents keyed by _id
//   - sqlite: ON CONFLICT upserts in a local database file
//
// Stores that can also answer aggregate questions about the crawled graph
// implement [Querier].
package graph
