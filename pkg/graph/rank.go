package graph

import (
	"cmp"
	"slices"
)

// RankShared pairs every two persons in subs (person -> subscription
// targets) that share at least one target and returns the n pairs sharing
// the most, ties broken by key. name labels both persons and targets.
// A non-positive n returns every pair.
func RankShared(subs map[Key][]Key, name func(Key) string, n int) []SharedSubscriptions {
	sets := make(map[Key]map[Key]bool, len(subs))
	for p, targets := range subs {
		if p.IsGroup() {
			continue
		}
		set := make(map[Key]bool, len(targets))
		for _, t := range targets {
			set[t] = true
		}
		sets[p] = set
	}

	persons := make([]Key, 0, len(sets))
	for k := range sets {
		persons = append(persons, k)
	}
	slices.Sort(persons)

	var pairs []SharedSubscriptions
	for i, a := range persons {
		for _, b := range persons[i+1:] {
			var shared []Key
			for t := range sets[a] {
				if sets[b][t] {
					shared = append(shared, t)
				}
			}
			if len(shared) == 0 {
				continue
			}
			slices.Sort(shared)
			names := make([]string, len(shared))
			for j, t := range shared {
				names[j] = name(t)
			}
			pairs = append(pairs, SharedSubscriptions{
				First:  Ranked{Key: a, Name: name(a), Count: len(shared)},
				Second: Ranked{Key: b, Name: name(b), Count: len(shared)},
				Shared: names,
			})
		}
	}

	slices.SortStableFunc(pairs, func(x, y SharedSubscriptions) int {
		return cmp.Compare(len(y.Shared), len(x.Shared))
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
