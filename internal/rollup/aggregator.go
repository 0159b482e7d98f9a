// Package rollup implements SegmentBuilder: combining multiple
// lower-dimensionality segments that share provenance into one new,
// reduced-dimensionality segment, preserving value semantics and
// predicate provenance (spec §4.4).
package rollup

import "cmp"

// Aggregator combines the list of cell values that accumulate under one
// target cell key during a rollup into a single output value. NULLs
// follow SQL aggregate semantics: Aggregate is only ever called with the
// non-NULL values observed for a key; an empty list means every
// contributing cell was NULL, and the caller stores NULL for that key.
type Aggregator interface {
	// Aggregate combines values, which is guaranteed non-empty, into the
	// target cell's value.
	Aggregate(values []float64) float64

	// Name identifies the aggregator (e.g. "sum").
	Name() string
}

// SumAggregator implements SQL SUM.
type SumAggregator struct{}

func (SumAggregator) Aggregate(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
func (SumAggregator) Name() string { return "sum" }

// CountAggregator implements SQL COUNT over non-NULL values.
type CountAggregator struct{}

func (CountAggregator) Aggregate(values []float64) float64 { return float64(len(values)) }
func (CountAggregator) Name() string                       { return "count" }

// MinAggregator implements SQL MIN.
type MinAggregator struct{}

func (MinAggregator) Aggregate(values []float64) float64 {
	return reduce(values, func(a, b float64) float64 {
		if cmp.Less(b, a) {
			return b
		}
		return a
	})
}
func (MinAggregator) Name() string { return "min" }

// MaxAggregator implements SQL MAX.
type MaxAggregator struct{}

func (MaxAggregator) Aggregate(values []float64) float64 {
	return reduce(values, func(a, b float64) float64 {
		if cmp.Less(a, b) {
			return b
		}
		return a
	})
}
func (MaxAggregator) Name() string { return "max" }

// AvgAggregator implements SQL AVG over non-NULL values.
type AvgAggregator struct{}

func (AvgAggregator) Aggregate(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
func (AvgAggregator) Name() string { return "avg" }

func reduce(values []float64, combine func(a, b float64) float64) float64 {
	acc := values[0]
	for _, v := range values[1:] {
		acc = combine(acc, v)
	}
	return acc
}
