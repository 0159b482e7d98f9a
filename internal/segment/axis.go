package segment

// Axis materializes one Column's sorted key set plus a key→ordinal map
// and the residual predicate text the axis was built from. Populated
// exclusively on the manager's designated thread (spec §5): building a
// Axis touches the same btree-backed sorted-set machinery the index
// uses, and the thread-ownership invariant covers both.
type Axis struct {
	ColumnExpr        string
	SortedKeys        []Value
	ordinalByKey      map[comparableCellKey]int32
	ResidualPredicate string
	HasNull           bool
}

// NewAxis builds an Axis from a Column's sorted value-set, recording the
// residual predicate text verbatim and detecting whether NULL appears
// among the values.
func NewAxis(col Column, residualPredicate string) *Axis {
	keys := append([]Value(nil), col.Values()...)
	ordinals := make(map[comparableCellKey]int32, len(keys))
	hasNull := false
	for i, k := range keys {
		ordinals[axisKeyToken(k)] = int32(i)
		if k == nil {
			hasNull = true
		}
	}
	return &Axis{
		ColumnExpr:        col.Expr(),
		SortedKeys:        keys,
		ordinalByKey:      ordinals,
		ResidualPredicate: residualPredicate,
		HasNull:           hasNull,
	}
}

// axisKeyToken renders a Value into the same map-key domain CellKey uses,
// so ordinal lookups are O(1) regardless of the value's Go type.
func axisKeyToken(v Value) comparableCellKey {
	return comparableCellKey(formatValue(v))
}

// Ordinal returns the axis position of value, or false if value does not
// occur on this axis. A NULL coordinate maps to the last slot when
// HasNull (spec §4.4 cell accumulation rule).
func (a *Axis) Ordinal(value Value) (int32, bool) {
	ord, ok := a.ordinalByKey[axisKeyToken(value)]
	return ord, ok
}

// Len returns the number of distinct keys on this axis.
func (a *Axis) Len() int { return len(a.SortedKeys) }
