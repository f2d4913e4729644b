package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/graph/memory"
)

// Snapshot is the serialized form of a crawled graph.
type Snapshot struct {
	Identities []graph.Identity `json:"identities"`
	Groups     []graph.Group    `json:"groups"`
	Edges      []graph.Edge     `json:"edges"`
}

// Take copies the contents of s in key order.
func Take(s *memory.Store) *Snapshot {
	out := &Snapshot{Edges: s.Edges()}
	for _, k := range s.IdentityKeys() {
		id, _ := s.Identity(k)
		out.Identities = append(out.Identities, id)
	}
	for _, k := range s.GroupKeys() {
		g, _ := s.Group(k)
		out.Groups = append(out.Groups, g)
	}
	return out
}

// WriteJSON encodes the contents of s as an indented snapshot.
func WriteJSON(s *memory.Store, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Take(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates a snapshot from r.
//
// ReadJSON returns an error if the JSON is malformed, an identity key is
// not positive, a group key is not negative, or an edge has an unknown
// relation. Edges may reference nodes absent from the snapshot; stores
// create such endpoints on write.
func ReadJSON(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	for _, id := range snap.Identities {
		if id.Key <= 0 {
			return nil, fmt.Errorf("identity %d: key must be positive", id.Key)
		}
	}
	for _, g := range snap.Groups {
		if !g.Key.IsGroup() {
			return nil, fmt.Errorf("group %d: key must be negative", g.Key)
		}
	}
	for _, e := range snap.Edges {
		if !e.Relation.Valid() {
			return nil, fmt.Errorf("edge %s: unknown relation %q", e.ID(), e.Relation)
		}
	}
	return &snap, nil
}

// ImportJSON reads the snapshot file at path.
func ImportJSON(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Replay writes snap into sink, nodes before edges. It stops at the first
// failed write.
func Replay(ctx context.Context, snap *Snapshot, sink graph.Sink) error {
	for _, id := range snap.Identities {
		if err := sink.UpsertIdentity(ctx, id); err != nil {
			return fmt.Errorf("identity %d: %w", id.Key, err)
		}
	}
	for _, g := range snap.Groups {
		if err := sink.UpsertGroup(ctx, g); err != nil {
			return fmt.Errorf("group %d: %w", g.Key, err)
		}
	}
	for _, e := range snap.Edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.UpsertEdge(ctx, e); err != nil {
			return fmt.Errorf("edge %s: %w", e.ID(), err)
		}
	}
	return nil
}
