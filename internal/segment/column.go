// Package segment implements the immutable, content-addressed data model
// shared by every segment in the cache: columns, headers, bodies, cell
// keys, axes and the live Segment/SegmentWithData wrappers bound to a
// star and measure.
package segment

import (
	"sort"

	"github.com/tidwall/btree"
)

// Value is the domain of a cell coordinate or axis key: a comparable cube
// value, or nil representing SQL NULL. Values are compared with compareValues,
// which sorts NULL last.
type Value = any

// Column is an immutable (columnExpression, sorted value-set) pair, or a
// wildcard meaning "this column is not constrained". Construct with
// NewColumn or Wildcard; the zero value is not valid.
type Column struct {
	expr     string
	wildcard bool
	values   []Value
}

// Wildcard returns an unconstrained Column for expr.
func Wildcard(expr string) Column {
	return Column{expr: expr, wildcard: true}
}

// NewColumn builds a constrained Column over values, sorting with the
// NULL-last comparator and deduplicating.
func NewColumn(expr string, values []Value) Column {
	sorted := sortAndDedupe(values)
	return Column{expr: expr, values: sorted}
}

// Expr returns the column expression this Column constrains.
func (c Column) Expr() string { return c.expr }

// IsWildcard reports whether the column is unconstrained.
func (c Column) IsWildcard() bool { return c.wildcard }

// Values returns a read-only view of the sorted value-set. Callers must
// not mutate the returned slice; it aliases the Column's internal storage.
func (c Column) Values() []Value { return c.values }

// Contains reports whether value is in the column's value-set. A
// wildcard column contains every value.
func (c Column) Contains(value Value) bool {
	if c.wildcard {
		return true
	}
	idx := sort.Search(len(c.values), func(i int) bool {
		return compareValues(c.values[i], value) >= 0
	})
	return idx < len(c.values) && compareValues(c.values[idx], value) == 0
}

// Merge combines c with other, which must share the same Expr. Wildcard
// union anything is wildcard; otherwise the result is the sorted union of
// both value-sets.
func (c Column) Merge(other Column) Column {
	if c.expr != other.expr {
		panic("segment: Merge called on columns with different expressions: " + c.expr + " vs " + other.expr)
	}
	if c.wildcard || other.wildcard {
		return Wildcard(c.expr)
	}
	merged := make([]Value, 0, len(c.values)+len(other.values))
	merged = append(merged, c.values...)
	merged = append(merged, other.values...)
	return NewColumn(c.expr, merged)
}

// Equals reports structural equality: same Expr, both wildcard, or
// element-wise equal value-sets.
func (c Column) Equals(other Column) bool {
	if c.expr != other.expr {
		return false
	}
	if c.wildcard != other.wildcard {
		return false
	}
	if c.wildcard {
		return true
	}
	if len(c.values) != len(other.values) {
		return false
	}
	for i := range c.values {
		if compareValues(c.values[i], other.values[i]) != 0 {
			return false
		}
	}
	return true
}

// HashCode returns a deterministic hash over Expr and the value-set,
// stable across processes (values are sorted before hashing).
func (c Column) HashCode() uint64 {
	h := fnvSeed
	h = fnvString(h, c.expr)
	if c.wildcard {
		return fnvString(h, "*")
	}
	for _, v := range c.values {
		h = fnvString(h, formatValue(v))
	}
	return h
}

// sortAndDedupe sorts values with the NULL-last comparator and removes
// duplicates, using a btree as the sorted-set structure rather than
// sort.Slice-then-compact so the same comparator-driven ordering the
// axis and index packages rely on is exercised in one place.
func sortAndDedupe(values []Value) []Value {
	tr := btree.NewBTreeG(func(a, b Value) bool { return compareValues(a, b) < 0 })
	for _, v := range values {
		tr.Set(v)
	}

	out := make([]Value, 0, tr.Len())
	tr.Scan(func(item Value) bool {
		out = append(out, item)
		return true
	})
	return out
}
