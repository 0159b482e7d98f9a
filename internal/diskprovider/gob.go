package diskprovider

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/segment"
)

// entryDTO is the on-disk, gob-encodable representation of one cache
// entry: a header and its body. segment.Header and segment.Body carry
// unexported memoization fields and a roaring-bitmap-backed BitKey that
// aren't directly gob-friendly, so this package translates to and from a
// flat, exported shape before touching the file system.
type entryDTO struct {
	Header headerDTO
	Body   bodyDTO
}

type columnDTO struct {
	Expr     string
	Wildcard bool
	Values   []any
}

type headerDTO struct {
	SchemaName             string
	SchemaChecksum         []byte
	CubeName               string
	MeasureName            string
	RolapStarFactTableName string
	ConstrainedColumns     []columnDTO
	CompoundPredicates     []string
	ConstrainedColsBits    []int
	ExcludedRegions        []columnDTO
}

type bodyDTO struct {
	Kind              int
	AxisValueSets     [][]any
	NullAxisFlags     []bool
	DenseDoubleValues []float64
	DenseIntValues    []int64
	DenseObjectValues []any
	DenseNullsBytes   []byte
	SparseOrdinals    [][]int32
	SparseValues      []any
}

func init() {
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(false)
}

func columnToDTO(c segment.Column) columnDTO {
	return columnDTO{Expr: c.Expr(), Wildcard: c.IsWildcard(), Values: append([]any(nil), c.Values()...)}
}

func columnFromDTO(d columnDTO) segment.Column {
	if d.Wildcard {
		return segment.Wildcard(d.Expr)
	}
	return segment.NewColumn(d.Expr, d.Values)
}

func headerToDTO(h *segment.Header) headerDTO {
	cols := make([]columnDTO, len(h.ConstrainedColumns))
	for i, c := range h.ConstrainedColumns {
		cols[i] = columnToDTO(c)
	}
	excluded := make([]columnDTO, len(h.ExcludedRegions))
	for i, c := range h.ExcludedRegions {
		excluded[i] = columnToDTO(c)
	}
	return headerDTO{
		SchemaName:             h.SchemaName,
		SchemaChecksum:         h.SchemaChecksum,
		CubeName:               h.CubeName,
		MeasureName:            h.MeasureName,
		RolapStarFactTableName: h.RolapStarFactTableName,
		ConstrainedColumns:     cols,
		CompoundPredicates:     h.CompoundPredicates,
		ConstrainedColsBits:    h.ConstrainedColsBitKey.Bits(),
		ExcludedRegions:        excluded,
	}
}

func headerFromDTO(d headerDTO) *segment.Header {
	cols := make([]segment.Column, len(d.ConstrainedColumns))
	for i, c := range d.ConstrainedColumns {
		cols[i] = columnFromDTO(c)
	}
	excluded := make([]segment.Column, len(d.ExcludedRegions))
	for i, c := range d.ExcludedRegions {
		excluded[i] = columnFromDTO(c)
	}
	bk := bitkey.Of(d.ConstrainedColsBits...)
	return segment.NewHeader(
		d.SchemaName, d.SchemaChecksum, d.CubeName, d.MeasureName, d.RolapStarFactTableName,
		cols, d.CompoundPredicates, bk, excluded,
	)
}

func bodyToDTO(b *segment.Body) (bodyDTO, error) {
	axisSets := make([][]any, len(b.AxisValueSets))
	for i, vs := range b.AxisValueSets {
		axisSets[i] = append([]any(nil), toAnySlice(vs)...)
	}

	dto := bodyDTO{
		Kind:          int(b.Kind),
		AxisValueSets: axisSets,
		NullAxisFlags: append([]bool(nil), b.NullAxisFlags...),
	}

	switch b.Kind {
	case segment.BodyDenseDouble:
		dto.DenseDoubleValues = b.DenseDoubleValues
		if b.DenseNulls != nil {
			bs, err := b.DenseNulls.MarshalBinary()
			if err != nil {
				return bodyDTO{}, fmt.Errorf("diskprovider: marshal null bitset: %w", err)
			}
			dto.DenseNullsBytes = bs
		}
	case segment.BodyDenseInt:
		dto.DenseIntValues = b.DenseIntValues
		if b.DenseNulls != nil {
			bs, err := b.DenseNulls.MarshalBinary()
			if err != nil {
				return bodyDTO{}, fmt.Errorf("diskprovider: marshal null bitset: %w", err)
			}
			dto.DenseNullsBytes = bs
		}
	case segment.BodyDenseObject:
		dto.DenseObjectValues = append([]any(nil), b.DenseObjectValues...)
	case segment.BodySparse:
		entries := b.SparseEntries()
		dto.SparseOrdinals = make([][]int32, len(entries))
		dto.SparseValues = make([]any, len(entries))
		for i, e := range entries {
			dto.SparseOrdinals[i] = e.Key.Ordinals()
			dto.SparseValues[i] = e.Value
		}
	}

	return dto, nil
}

func bodyFromDTO(d bodyDTO) (*segment.Body, error) {
	axisSets := make([][]segment.Value, len(d.AxisValueSets))
	for i, vs := range d.AxisValueSets {
		axisSets[i] = vs
	}

	switch segment.BodyKind(d.Kind) {
	case segment.BodyDenseDouble:
		nulls, err := bitsetFromBytes(d.DenseNullsBytes)
		if err != nil {
			return nil, err
		}
		return segment.NewDenseDoubleBody(axisSets, d.NullAxisFlags, d.DenseDoubleValues, nulls), nil
	case segment.BodyDenseInt:
		nulls, err := bitsetFromBytes(d.DenseNullsBytes)
		if err != nil {
			return nil, err
		}
		return segment.NewDenseIntBody(axisSets, d.NullAxisFlags, d.DenseIntValues, nulls), nil
	case segment.BodyDenseObject:
		return segment.NewDenseObjectBody(axisSets, d.NullAxisFlags, d.DenseObjectValues), nil
	case segment.BodySparse:
		cells := make(map[segment.CellKey]segment.Value, len(d.SparseOrdinals))
		for i, ords := range d.SparseOrdinals {
			cells[segment.NewCellKey(ords)] = d.SparseValues[i]
		}
		return segment.NewSparseBody(axisSets, d.NullAxisFlags, cells), nil
	default:
		return nil, fmt.Errorf("diskprovider: unknown body kind %d", d.Kind)
	}
}

func bitsetFromBytes(b []byte) (*bitset.BitSet, error) {
	if len(b) == 0 {
		return nil, nil
	}
	bs := &bitset.BitSet{}
	if err := bs.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("diskprovider: unmarshal null bitset: %w", err)
	}
	return bs, nil
}

func toAnySlice(vs []segment.Value) []any {
	out := make([]any, len(vs))
	copy(out, vs)
	return out
}

func encodeEntry(header *segment.Header, body *segment.Body) ([]byte, error) {
	bDTO, err := bodyToDTO(body)
	if err != nil {
		return nil, err
	}
	dto := entryDTO{Header: headerToDTO(header), Body: bDTO}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dto); err != nil {
		return nil, fmt.Errorf("diskprovider: encode entry: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEntry(data []byte) (*segment.Header, *segment.Body, error) {
	var dto entryDTO
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dto); err != nil {
		return nil, nil, fmt.Errorf("diskprovider: decode entry: %w", err)
	}
	header := headerFromDTO(dto.Header)
	body, err := bodyFromDTO(dto.Body)
	if err != nil {
		return nil, nil, err
	}
	return header, body, nil
}
