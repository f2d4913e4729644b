package graph

import (
	"context"
	"errors"
	"testing"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		want    Key
		isGroup bool
		source  int64
	}{
		{"person", PersonKey(5), 5, false, 5},
		{"group", GroupKey(5), -5, true, 5},
		{"group from negative id", GroupKey(-5), -5, true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != tt.want {
				t.Errorf("key = %d, want %d", tt.key, tt.want)
			}
			if tt.key.IsGroup() != tt.isGroup {
				t.Errorf("IsGroup() = %v, want %v", tt.key.IsGroup(), tt.isGroup)
			}
			if tt.key.SourceID() != tt.source {
				t.Errorf("SourceID() = %d, want %d", tt.key.SourceID(), tt.source)
			}
		})
	}
}

func TestPersonAndGroupKeysDisjoint(t *testing.T) {
	for id := int64(1); id <= 1000; id++ {
		if PersonKey(id) == GroupKey(id) {
			t.Fatalf("person and group key collide for id %d", id)
		}
	}
}

func TestEdgeID(t *testing.T) {
	e := Edge{From: 2, To: 1, Relation: Follow}
	if got := e.ID(); got != "2:Follow:1" {
		t.Errorf("ID() = %q", got)
	}
	g := Edge{From: 1, To: GroupKey(10), Relation: Subscribe}
	if got := g.ID(); got != "1:Subscribe:-10" {
		t.Errorf("ID() = %q", got)
	}
}

func TestRelationValid(t *testing.T) {
	if !Follow.Valid() || !Subscribe.Valid() {
		t.Error("known relations should be valid")
	}
	if Relation("Likes").Valid() {
		t.Error("unknown relation should be invalid")
	}
}

type recordingSink struct {
	calls int
	err   error
}

func (s *recordingSink) UpsertIdentity(context.Context, Identity) error { s.calls++; return s.err }
func (s *recordingSink) UpsertGroup(context.Context, Group) error       { s.calls++; return s.err }
func (s *recordingSink) UpsertEdge(context.Context, Edge) error         { s.calls++; return s.err }
func (s *recordingSink) Close(context.Context) error                    { s.calls++; return s.err }

func TestTeeCallsEverySink(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingSink{err: boom}
	ok := &recordingSink{}
	tee := Tee{failing, ok}

	err := tee.UpsertIdentity(context.Background(), Identity{Key: 1})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if ok.calls != 1 {
		t.Errorf("second sink calls = %d, want 1", ok.calls)
	}

	if err := (Tee{ok}).UpsertEdge(context.Background(), Edge{From: 1, To: 2, Relation: Follow}); err != nil {
		t.Errorf("UpsertEdge error = %v", err)
	}
}
