// Package bitkey implements the fixed-width dimensionality bitmap used to
// tag a SegmentHeader's constrained columns and to serve as an element of
// the PartiallyOrderedSet used by rollup candidate discovery. It wraps a
// compressed roaring bitmap rather than a hand-rolled long-array bitmap:
// the same set algebra the original needs (union, intersection, superset,
// cardinality) comes for free, and roaring gives deterministic, cheap
// cardinality comparisons that ancestor-ordering in the poset depends on.
package bitkey

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// BitKey is an immutable set of set bit positions identifying which
// columns of a star a SegmentHeader constrains. The zero value is the
// empty key.
type BitKey struct {
	bits *roaring.Bitmap
}

// Empty returns the BitKey with no bits set.
func Empty() BitKey {
	return BitKey{bits: roaring.New()}
}

// Of builds a BitKey with the given bit positions set.
func Of(positions ...int) BitKey {
	bm := roaring.New()
	for _, p := range positions {
		bm.Add(uint32(p))
	}
	return BitKey{bits: bm}
}

// ensure returns a non-nil bitmap, treating the zero value as empty.
func (k BitKey) ensure() *roaring.Bitmap {
	if k.bits == nil {
		return roaring.New()
	}
	return k.bits
}

// Set returns a new BitKey with position added, leaving k unmodified.
func (k BitKey) Set(position int) BitKey {
	bm := k.ensure().Clone()
	bm.Add(uint32(position))
	return BitKey{bits: bm}
}

// Test reports whether position is set.
func (k BitKey) Test(position int) bool {
	return k.ensure().Contains(uint32(position))
}

// Union returns the bitwise OR of k and other.
func (k BitKey) Union(other BitKey) BitKey {
	return BitKey{bits: roaring.Or(k.ensure(), other.ensure())}
}

// Intersection returns the bitwise AND of k and other.
func (k BitKey) Intersection(other BitKey) BitKey {
	return BitKey{bits: roaring.And(k.ensure(), other.ensure())}
}

// IsSuperset reports whether k contains every bit set in other.
func (k BitKey) IsSuperset(other BitKey) bool {
	return other.ensure().AndCardinality(k.ensure()) == other.ensure().GetCardinality()
}

// IsSubset reports whether every bit set in k is also set in other.
func (k BitKey) IsSubset(other BitKey) bool {
	return other.IsSuperset(k)
}

// Cardinality returns the number of set bits (popcount).
func (k BitKey) Cardinality() int {
	return int(k.ensure().GetCardinality())
}

// Equals reports structural equality: the same bits set.
func (k BitKey) Equals(other BitKey) bool {
	return k.ensure().Equals(other.ensure())
}

// HashCode returns a deterministic, cheap (non-cryptographic) hash of the
// set bits, suitable for map keys alongside Equals.
func (k BitKey) HashCode() uint64 {
	h := uint64(1469598103934665603) // FNV offset basis
	for _, v := range k.ensure().ToArray() {
		h ^= uint64(v)
		h *= 1099511628211 // FNV prime
	}
	return h
}

// Bits returns the sorted set bit positions. The returned slice is a copy.
func (k BitKey) Bits() []int {
	arr := k.ensure().ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}

// IsEmpty reports whether no bits are set.
func (k BitKey) IsEmpty() bool {
	return k.ensure().IsEmpty()
}

// String renders the key as its sorted bit positions, for logging and
// test failure messages.
func (k BitKey) String() string {
	return fmt.Sprintf("%v", k.Bits())
}

// MapKey returns a string suitable for use as a Go map key representing
// this BitKey's bit set. Two BitKeys with the same set bits, even built
// independently, always produce the same MapKey — unlike the BitKey
// struct itself, which embeds a *roaring.Bitmap pointer and so compares
// by identity, not content, when used directly as a map key.
func (k BitKey) MapKey() string {
	bs, _ := k.ensure().ToBase64()
	return bs
}
