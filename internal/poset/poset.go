// Package poset implements the partially-ordered set of dimensionality
// bitmaps findRollupCandidates ascends: given a target BitKey, it
// answers "which known, strictly more specific bitkeys are ancestors of
// this one", in increasing order of extra bits, so the rollup search
// tries the smallest ancestor rectangles first (spec §4.3).
package poset

import (
	"sort"

	"github.com/cubedata/segcache/internal/bitkey"
)

// Set tracks the distinct BitKeys registered for one fact (provenance
// group) and answers ancestor queries over the superset partial order.
// Not safe for concurrent use; callers outside this package are expected
// to already hold the manager's thread-ownership invariant (spec §5).
type Set struct {
	// members is keyed by BitKey.MapKey rather than BitKey itself: BitKey
	// embeds a *roaring.Bitmap pointer, so using it directly as a map key
	// would compare by identity instead of by bit content.
	members map[string]bitkey.BitKey
	// keysByCardinality caches sorted keys; invalidated on insert/remove.
	keysByCardinality []bitkey.BitKey
	dirty             bool
}

// New returns an empty Set.
func New() *Set {
	return &Set{members: make(map[string]bitkey.BitKey)}
}

// Add registers key in the set. A no-op if key is already present.
func (s *Set) Add(key bitkey.BitKey) {
	mk := key.MapKey()
	if _, ok := s.members[mk]; ok {
		return
	}
	s.members[mk] = key
	s.dirty = true
}

// Remove unregisters key from the set.
func (s *Set) Remove(key bitkey.BitKey) {
	mk := key.MapKey()
	if _, ok := s.members[mk]; !ok {
		return
	}
	delete(s.members, mk)
	s.dirty = true
}

// Contains reports whether key is registered.
func (s *Set) Contains(key bitkey.BitKey) bool {
	_, ok := s.members[key.MapKey()]
	return ok
}

// Len returns the number of registered keys.
func (s *Set) Len() int { return len(s.members) }

func (s *Set) sorted() []bitkey.BitKey {
	if !s.dirty && s.keysByCardinality != nil {
		return s.keysByCardinality
	}
	keys := make([]bitkey.BitKey, 0, len(s.members))
	for _, k := range s.members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := keys[i].Cardinality(), keys[j].Cardinality()
		if ci != cj {
			return ci < cj
		}
		return keys[i].MapKey() < keys[j].MapKey()
	})
	s.keysByCardinality = keys
	s.dirty = false
	return keys
}

// Ancestors returns every registered key that is a proper superset of
// target, ordered by increasing cardinality (fewest extra bits first) —
// the order findRollupCandidates ascends in so it tries the smallest
// ancestor rectangles before larger, more expensive ones.
func (s *Set) Ancestors(target bitkey.BitKey) []bitkey.BitKey {
	out := make([]bitkey.BitKey, 0)
	for _, k := range s.sorted() {
		if k.Equals(target) {
			continue
		}
		if k.IsSuperset(target) {
			out = append(out, k)
		}
	}
	return out
}
