package segment

import "fmt"

// CellKey is an immutable key identifying one cell within a segment body
// by its per-axis ordinal. Arity equals len(Ordinals); equality and
// hashing are element-wise and stable across processes, unifying the
// reference's two near-identical per-cell key types into one.
type CellKey struct {
	ordinals []int32
	hash     uint64
}

// NewCellKey builds a CellKey from per-axis ordinals, precomputing its hash.
func NewCellKey(ordinals []int32) CellKey {
	cp := make([]int32, len(ordinals))
	copy(cp, ordinals)
	h := fnvSeed
	for _, o := range cp {
		h ^= uint64(uint32(o))
		h *= 1099511628211
	}
	return CellKey{ordinals: cp, hash: h}
}

// Ordinals returns a read-only view of the per-axis ordinals.
func (k CellKey) Ordinals() []int32 { return k.ordinals }

// Arity returns the number of axes this key spans.
func (k CellKey) Arity() int { return len(k.ordinals) }

// HashCode returns the precomputed hash.
func (k CellKey) HashCode() uint64 { return k.hash }

// Equals reports element-wise equality of ordinals.
func (k CellKey) Equals(other CellKey) bool {
	if len(k.ordinals) != len(other.ordinals) {
		return false
	}
	for i := range k.ordinals {
		if k.ordinals[i] != other.ordinals[i] {
			return false
		}
	}
	return true
}

// comparableCellKey renders a CellKey as a string suitable for use as a
// Go map key (int32 slices aren't comparable).
type comparableCellKey string

// MapKey returns k rendered for use as a Go map key.
func (k CellKey) MapKey() comparableCellKey {
	return comparableCellKey(fmt.Sprint(k.ordinals))
}
