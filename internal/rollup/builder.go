package rollup

import (
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/segment"
)

// Input is one (header, body) pair contributing to a rollup. All Inputs
// passed to Builder.Rollup must share provenance and dimensionality
// (spec §4.4 precondition).
type Input struct {
	Header *segment.Header
	Body   *segment.Body
}

// Builder implements SegmentBuilder: combining a set of same-dimensionality,
// same-provenance segments into one reduced-dimensionality segment.
type Builder struct {
	// DensityThreshold is the fraction of populated target cells at or
	// above which the output body is stored densely rather than sparsely.
	DensityThreshold float64
}

// NewBuilder returns a Builder using threshold as its sparse/dense
// selection cutoff.
func NewBuilder(threshold float64) *Builder {
	return &Builder{DensityThreshold: threshold}
}

type reconciledAxis struct {
	expr          string
	values        []segment.Value
	hasNull       bool
	lostPredicate bool
	sourceIndex   int // index into the first header's ConstrainedColumns
}

// Rollup combines inputs, keeping the columns named in keepColumns and
// aggregating every other constrained axis away with agg, producing a
// new Header with dimensionality targetBitKey and its Body.
//
// Preconditions (caller-enforced, spec §4.4): inputs is non-empty, every
// Header shares provenance and ConstrainedColsBitKey, and keepColumns is
// a subset of that dimensionality's column expressions.
func (b *Builder) Rollup(inputs []Input, keepColumns map[string]bool, targetBitKey bitkey.BitKey, agg Aggregator) (*segment.Header, *segment.Body) {
	if len(inputs) == 0 {
		return nil, segment.NewDenseObjectBody(nil, nil, nil)
	}

	axes := reconcileAxes(inputs, keepColumns)
	accum := accumulateCells(inputs, axes)
	header := synthesizeHeader(inputs[0].Header, axes, targetBitKey)
	body := b.selectBody(axes, accum, agg)
	return header, body
}

// reconcileAxes picks the kept SegmentColumns from the first header, in
// header order, then intersects each axis's observed value-set and ANDs
// its hasNull flag across every input segment (spec §4.4 step 1).
func reconcileAxes(inputs []Input, keepColumns map[string]bool) []reconciledAxis {
	first := inputs[0].Header
	var axes []reconciledAxis

	for i, col := range first.ConstrainedColumns {
		if !keepColumns[col.Expr()] {
			continue
		}

		running := append([]segment.Value(nil), col.Values()...)
		hasNull := containsNull(running)
		lost := false

		for _, in := range inputs[1:] {
			other, ok := in.Header.GetConstrainedColumn(col.Expr())
			if !ok {
				lost = true
				continue
			}
			if !sameValues(running, other.Values()) {
				lost = true
			}
			running = intersectValues(running, other.Values())
			hasNull = hasNull && containsNull(other.Values())
		}

		axes = append(axes, reconciledAxis{
			expr:          col.Expr(),
			values:        running,
			hasNull:       hasNull,
			lostPredicate: lost,
			sourceIndex:   i,
		})
	}

	return axes
}

func containsNull(values []segment.Value) bool {
	for _, v := range values {
		if v == nil {
			return true
		}
	}
	return false
}

func sameValues(a, b []segment.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intersectValues(a, b []segment.Value) []segment.Value {
	set := make(map[any]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	out := make([]segment.Value, 0, len(a))
	for _, v := range a {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}

type accumulator struct {
	axisValueSets [][]segment.Value
	nullFlags     []bool
	cells         map[string][]float64 // key: CellKey.MapKey()-equivalent string
	cellKeys      map[string]segment.CellKey
}

// accumulateCells translates every input cell's kept-axis ordinals into
// the reconciled target key space and appends its value to that key's
// running list (spec §4.4 step 2).
func accumulateCells(inputs []Input, axes []reconciledAxis) *accumulator {
	axisValueSets := make([][]segment.Value, len(axes))
	nullFlags := make([]bool, len(axes))
	for i, a := range axes {
		axisValueSets[i] = a.values
		nullFlags[i] = a.hasNull
	}

	acc := &accumulator{
		axisValueSets: axisValueSets,
		nullFlags:     nullFlags,
		cells:         make(map[string][]float64),
		cellKeys:      make(map[string]segment.CellKey),
	}

	for _, in := range inputs {
		walkCells(in.Body, func(srcOrdinals []int32, value segment.Value) {
			if value == nil {
				return // NULLs are excluded from aggregation inputs
			}
			fv, ok := toFloat(value)
			if !ok {
				return
			}

			targetOrdinals := make([]int32, len(axes))
			for i, a := range axes {
				v := axisValue(in.Body, a.sourceIndex, srcOrdinals)
				ord, found := locateOrdinal(a.values, v, a.hasNull)
				if !found {
					return
				}
				targetOrdinals[i] = ord
			}

			key := segment.NewCellKey(targetOrdinals)
			mk := ordinalsMapKey(targetOrdinals)
			acc.cells[mk] = append(acc.cells[mk], fv)
			acc.cellKeys[mk] = key
		})
	}

	return acc
}

func ordinalsMapKey(ordinals []int32) string {
	return string(segment.NewCellKey(ordinals).MapKey())
}

// axisValue returns the source body's value on its axis sourceIndex for
// the given source ordinals, by consulting the body's materialized
// AxisValueSets at that linear coordinate.
func axisValue(body *segment.Body, sourceIndex int, srcOrdinals []int32) segment.Value {
	if sourceIndex < 0 || sourceIndex >= len(body.AxisValueSets) {
		return nil
	}
	vs := body.AxisValueSets[sourceIndex]
	ord := int(srcOrdinals[sourceIndex])
	if ord < 0 || ord >= len(vs) {
		return nil
	}
	return vs[ord]
}

// locateOrdinal binary-searches value in a reconciled axis's sorted
// value array; a NULL coordinate maps to the last slot when the axis
// observed NULLs (spec §4.4 step 2).
func locateOrdinal(values []segment.Value, value segment.Value, hasNull bool) (int32, bool) {
	if value == nil {
		if hasNull {
			return int32(len(values) - 1), true
		}
		return 0, false
	}
	idx := sort.Search(len(values), func(i int) bool {
		return compareForSearch(values[i], value) >= 0
	})
	if idx < len(values) && values[idx] == value {
		return int32(idx), true
	}
	return 0, false
}

func compareForSearch(a, b segment.Value) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := formatAny(a), formatAny(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func formatAny(v segment.Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toFloat(v segment.Value) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	default:
		return 0, false
	}
}

// walkCells invokes fn for every populated cell in body, passing that
// cell's per-axis source ordinals and value.
func walkCells(body *segment.Body, fn func(ordinals []int32, value segment.Value)) {
	if body == nil {
		return
	}
	switch body.Kind {
	case segment.BodySparse:
		for _, e := range body.SparseEntries() {
			fn(e.Key.Ordinals(), e.Value)
		}
	default:
		total := segment.LinearIndexCount(body.AxisValueSets)
		dims := make([]int, len(body.AxisValueSets))
		for i, vs := range body.AxisValueSets {
			dims[i] = len(vs)
		}
		for linear := 0; linear < total; linear++ {
			ordinals := unflattenIndex(linear, dims)
			key := segment.NewCellKey(ordinals)
			value, ok := body.Get(linear, key)
			if !ok {
				continue
			}
			fn(ordinals, value)
		}
	}
}

func unflattenIndex(linear int, dims []int) []int32 {
	ordinals := make([]int32, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		if dims[i] == 0 {
			ordinals[i] = 0
			continue
		}
		ordinals[i] = int32(linear % dims[i])
		linear /= dims[i]
	}
	return ordinals
}

// synthesizeHeader builds the rolled-up Header: kept columns use their
// observed value-set when lostPredicate, otherwise the original
// predicate verbatim; provenance and compound predicates are copied from
// the first input header; excluded regions are empty (spec §4.4 step 4).
func synthesizeHeader(first *segment.Header, axes []reconciledAxis, targetBitKey bitkey.BitKey) *segment.Header {
	cols := make([]segment.Column, len(axes))
	for i, a := range axes {
		if a.lostPredicate {
			cols[i] = segment.NewColumn(a.expr, a.values)
			continue
		}
		original, _ := first.GetConstrainedColumn(a.expr)
		cols[i] = original
	}

	return segment.NewHeader(
		first.SchemaName, first.SchemaChecksum, first.CubeName, first.MeasureName, first.RolapStarFactTableName,
		cols, append([]string(nil), first.CompoundPredicates...), targetBitKey, nil,
	)
}

// selectBody aggregates the accumulated per-cell value lists and picks a
// sparse or dense representation by density heuristic (spec §4.4 step 3).
func (b *Builder) selectBody(axes []reconciledAxis, acc *accumulator, agg Aggregator) *segment.Body {
	total := segment.LinearIndexCount(acc.axisValueSets)
	populated := len(acc.cells)

	density := 0.0
	if total > 0 {
		density = float64(populated) / float64(total)
	}

	if total == 0 || density < b.DensityThreshold {
		cells := make(map[segment.CellKey]segment.Value, populated)
		for mk, values := range acc.cells {
			cells[acc.cellKeys[mk]] = agg.Aggregate(values)
		}
		return segment.NewSparseBody(acc.axisValueSets, acc.nullFlags, cells)
	}

	values := make([]float64, total)
	nulls := bitset.New(uint(total))
	for i := range values {
		nulls.Set(uint(i))
	}
	dims := make([]int, len(acc.axisValueSets))
	for i, vs := range acc.axisValueSets {
		dims[i] = len(vs)
	}
	for mk, vs := range acc.cells {
		linear := flattenIndex(acc.cellKeys[mk].Ordinals(), dims)
		result := agg.Aggregate(vs)
		values[linear] = result
		nulls.Clear(uint(linear))
	}

	if allFitInt64(values, nulls) {
		intValues := make([]int64, total)
		for i, v := range values {
			intValues[i] = int64(math.Round(v))
		}
		return segment.NewDenseIntBody(acc.axisValueSets, acc.nullFlags, intValues, nulls)
	}

	return segment.NewDenseDoubleBody(acc.axisValueSets, acc.nullFlags, values, nulls)
}

func flattenIndex(ordinals []int32, dims []int) int {
	linear := 0
	for i, d := range dims {
		linear = linear*d + int(ordinals[i])
	}
	return linear
}

// allFitInt64 reports whether every non-null value is an exact integer,
// so NewDenseIntBody can be chosen instead of NewDenseDoubleBody. Any
// fractional value falls back to the double variant (spec §4.4's
// "numeric overflow on dense-int falls back to dense-object", realized
// here as a fallback to dense-double since float64 already covers the
// full int64 range other than precision, which this check also guards).
func allFitInt64(values []float64, nulls *bitset.BitSet) bool {
	for i, v := range values {
		if nulls.Test(uint(i)) {
			continue
		}
		if v != math.Trunc(v) {
			return false
		}
		if v > math.MaxInt64 || v < math.MinInt64 {
			return false
		}
	}
	return true
}
