package graph

import (
	"reflect"
	"testing"
)

func TestRankShared(t *testing.T) {
	subs := map[Key][]Key{
		1:  {-10, -11, 4},
		2:  {-10, -11},
		3:  {-10},
		4:  {},
		-7: {-10}, // groups never subscribe; ignored
	}
	name := func(k Key) string { return k.String() }

	got := RankShared(subs, name, 0)
	if len(got) != 3 {
		t.Fatalf("pairs = %d, want 3: %+v", len(got), got)
	}
	if got[0].First.Key != 1 || got[0].Second.Key != 2 || got[0].First.Count != 2 {
		t.Errorf("top pair = %+v", got[0])
	}
	if !reflect.DeepEqual(got[0].Shared, []string{"-11", "-10"}) {
		t.Errorf("shared = %v", got[0].Shared)
	}

	if top := RankShared(subs, name, 1); len(top) != 1 {
		t.Errorf("RankShared(n=1) = %d pairs", len(top))
	}
}
