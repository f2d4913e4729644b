// Package snapshot provides JSON import and export for crawled graphs.
//
// # Overview
//
// A snapshot is a self-contained JSON document holding every identity,
// group and edge of a crawl. It lets a crawl run once against the API and
// be loaded into any graph store later:
//
//	vkgraph export durov -o durov.json
//	vkgraph load durov.json --sink neo4j
//
// # JSON Format
//
//	{
//	  "identities": [{"id": 1, "name": "Pavel Durov", "screen_name": "durov"}],
//	  "groups":     [{"id": -1, "name": "VK", "screen_name": "vk"}],
//	  "edges":      [{"from": 1, "to": -1, "relation": "Subscribe"}]
//	}
//
// Identity ids are positive, group ids negative. Relations are "Follow" or
// "Subscribe".
//
// # Replay
//
// [Replay] writes a snapshot into a [graph.Sink] in dependency order:
// nodes first, then edges. Writes are idempotent, so loading the same
// snapshot twice leaves the store unchanged.
package snapshot
