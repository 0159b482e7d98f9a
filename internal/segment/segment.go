package segment

// ColumnPredicate is a single column-level predicate bound into a live
// Segment: the column it constrains plus the operator/values the
// evaluator requested, independent of how the header ultimately chose to
// represent the constraint.
type ColumnPredicate struct {
	Column   Column
	Operator string // e.g. "IN", "=", "BETWEEN"; opaque to this package
}

// Segment is a Header's runtime counterpart: bound to a star and a
// measure, with the column-level and compound predicates the query that
// produced it used, and the regions later flushes have punched out of it.
type Segment struct {
	Header             *Header
	StarName           string
	MeasureName        string
	ColumnPredicates   []ColumnPredicate
	CompoundPredicates []string
	ExcludedRegions    []Column
}

// NewSegment binds header to a star/measure with its originating
// predicates.
func NewSegment(header *Header, starName, measureName string, predicates []ColumnPredicate, compoundPredicates []string) *Segment {
	return &Segment{
		Header:             header,
		StarName:           starName,
		MeasureName:        measureName,
		ColumnPredicates:   predicates,
		CompoundPredicates: compoundPredicates,
	}
}

// ExcludeRegion records that region has been flushed out of this segment.
func (s *Segment) ExcludeRegion(region Column) {
	s.ExcludedRegions = append(s.ExcludedRegions, region)
}

// Dataset is the in-memory mirror of a Body bound to a live Segment: the
// same cell payload, addressable through the Segment's materialized
// Axes rather than raw linear indices.
type Dataset struct {
	Body *Body
}

// WithData extends Segment with its materialized Axes and the Dataset
// mirroring its Body. Constructing one touches the manager's
// thread-ownership invariant the same way Axis construction does (spec
// §4.7): both happen exclusively on the manager's designated goroutine.
type WithData struct {
	*Segment
	Axes    []*Axis
	Dataset *Dataset
}

// NewWithData binds axes and a dataset to segment, in axis order aligned
// with segment.Header.ConstrainedColumns.
func NewWithData(seg *Segment, axes []*Axis, dataset *Dataset) *WithData {
	return &WithData{Segment: seg, Axes: axes, Dataset: dataset}
}

// AxisFor returns the materialized Axis for columnExpr, if present.
func (w *WithData) AxisFor(columnExpr string) (*Axis, bool) {
	for _, a := range w.Axes {
		if a.ColumnExpr == columnExpr {
			return a, true
		}
	}
	return nil, false
}
