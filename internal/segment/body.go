package segment

import "github.com/bits-and-blooms/bitset"

// BodyKind discriminates the four SegmentBody storage variants.
type BodyKind int

const (
	BodyDenseDouble BodyKind = iota
	BodyDenseInt
	BodyDenseObject
	BodySparse
)

// Body is an immutable, serializable cell payload. Exactly one of the
// Dense*/Sparse fields is populated, selected by Kind. All variants carry
// the same per-axis metadata: the materialized value-set for each axis
// and whether the source data included a NULL coordinate on that axis.
type Body struct {
	Kind BodyKind

	// AxisValueSets holds, per axis, the sorted set of values the axis
	// ranges over in this body.
	AxisValueSets [][]Value

	// NullAxisFlags records, per axis, whether a NULL coordinate occurs
	// on that axis anywhere in the body.
	NullAxisFlags []bool

	// DenseValues holds cell values in row-major linear-index order for
	// BodyDenseDouble/BodyDenseInt/BodyDenseObject.
	DenseDoubleValues []float64
	DenseIntValues    []int64
	DenseObjectValues []Value

	// DenseNulls marks, by linear index, which dense cells are NULL.
	// Populated for BodyDenseDouble and BodyDenseInt only — BodyDenseObject
	// represents NULL directly as a nil element of DenseObjectValues.
	DenseNulls *bitset.BitSet

	// SparseValues maps a cell's CellKey to its value, for BodySparse.
	SparseValues map[comparableCellKey]sparseCell
}

// sparseCell pairs a sparse cell's original CellKey (for iteration) with
// its value, since the map key is a string rendering of the key.
type sparseCell struct {
	key   CellKey
	value Value
}

// LinearIndexCount returns the number of cells a dense body of this
// axis shape holds.
func LinearIndexCount(axisValueSets [][]Value) int {
	count := 1
	for _, vs := range axisValueSets {
		count *= len(vs)
	}
	return count
}

// NewDenseDoubleBody builds a BodyDenseDouble variant. values and nulls
// must both be indexed by the same linear-index scheme as axisValueSets.
func NewDenseDoubleBody(axisValueSets [][]Value, nullAxisFlags []bool, values []float64, nulls *bitset.BitSet) *Body {
	return &Body{
		Kind:              BodyDenseDouble,
		AxisValueSets:     axisValueSets,
		NullAxisFlags:     nullAxisFlags,
		DenseDoubleValues: values,
		DenseNulls:        nulls,
	}
}

// NewDenseIntBody builds a BodyDenseInt variant.
func NewDenseIntBody(axisValueSets [][]Value, nullAxisFlags []bool, values []int64, nulls *bitset.BitSet) *Body {
	return &Body{
		Kind:           BodyDenseInt,
		AxisValueSets:  axisValueSets,
		NullAxisFlags:  nullAxisFlags,
		DenseIntValues: values,
		DenseNulls:     nulls,
	}
}

// NewDenseObjectBody builds a BodyDenseObject variant. A nil element of
// values represents a NULL cell.
func NewDenseObjectBody(axisValueSets [][]Value, nullAxisFlags []bool, values []Value) *Body {
	return &Body{
		Kind:              BodyDenseObject,
		AxisValueSets:     axisValueSets,
		NullAxisFlags:     nullAxisFlags,
		DenseObjectValues: values,
	}
}

// NewSparseBody builds a BodySparse variant from a cell-key → value map.
func NewSparseBody(axisValueSets [][]Value, nullAxisFlags []bool, cells map[CellKey]Value) *Body {
	sparse := make(map[comparableCellKey]sparseCell, len(cells))
	for k, v := range cells {
		sparse[k.MapKey()] = sparseCell{key: k, value: v}
	}
	return &Body{
		Kind:          BodySparse,
		AxisValueSets: axisValueSets,
		NullAxisFlags: nullAxisFlags,
		SparseValues:  sparse,
	}
}

// SparseEntry pairs a sparse cell's key and value for iteration outside
// this package, where the internal sparseCell/comparableCellKey types
// aren't nameable.
type SparseEntry struct {
	Key   CellKey
	Value Value
}

// SparseEntries returns every populated cell of a BodySparse body, in no
// particular order. It returns nil for other Kinds.
func (b *Body) SparseEntries() []SparseEntry {
	if b.Kind != BodySparse {
		return nil
	}
	out := make([]SparseEntry, 0, len(b.SparseValues))
	for _, cell := range b.SparseValues {
		out = append(out, SparseEntry{Key: cell.key, Value: cell.value})
	}
	return out
}

// Get returns the value at the dense linear index idx, or the sparse
// cell at key, depending on Kind. For BodySparse, idx is ignored and key
// must be provided; for dense variants key is ignored.
func (b *Body) Get(idx int, key CellKey) (Value, bool) {
	switch b.Kind {
	case BodyDenseDouble:
		if idx < 0 || idx >= len(b.DenseDoubleValues) {
			return nil, false
		}
		if b.DenseNulls != nil && b.DenseNulls.Test(uint(idx)) {
			return nil, true
		}
		return b.DenseDoubleValues[idx], true
	case BodyDenseInt:
		if idx < 0 || idx >= len(b.DenseIntValues) {
			return nil, false
		}
		if b.DenseNulls != nil && b.DenseNulls.Test(uint(idx)) {
			return nil, true
		}
		return b.DenseIntValues[idx], true
	case BodyDenseObject:
		if idx < 0 || idx >= len(b.DenseObjectValues) {
			return nil, false
		}
		return b.DenseObjectValues[idx], true
	case BodySparse:
		cell, ok := b.SparseValues[key.MapKey()]
		if !ok {
			return nil, false
		}
		return cell.value, true
	default:
		return nil, false
	}
}

// CellCount returns the number of populated cells: the full linear index
// count for dense variants, or the number of entries for sparse.
func (b *Body) CellCount() int {
	switch b.Kind {
	case BodyDenseDouble:
		return len(b.DenseDoubleValues)
	case BodyDenseInt:
		return len(b.DenseIntValues)
	case BodyDenseObject:
		return len(b.DenseObjectValues)
	case BodySparse:
		return len(b.SparseValues)
	default:
		return 0
	}
}

// Density returns the number of non-NULL cells as a fraction of the
// dense linear-index space defined by AxisValueSets — used by the rollup
// builder's sparse/dense selection heuristic.
func (b *Body) Density() float64 {
	total := LinearIndexCount(b.AxisValueSets)
	if total == 0 {
		return 0
	}
	nonNull := 0
	switch b.Kind {
	case BodySparse:
		nonNull = len(b.SparseValues)
	case BodyDenseObject:
		for _, v := range b.DenseObjectValues {
			if v != nil {
				nonNull++
			}
		}
	default:
		nonNull = b.CellCount()
		if b.DenseNulls != nil {
			nonNull -= int(b.DenseNulls.Count())
		}
	}
	return float64(nonNull) / float64(total)
}
