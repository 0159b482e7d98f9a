package rollup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/rollup"
	"github.com/cubedata/segcache/internal/segment"
)

func makeHeader(states, products []segment.Value) *segment.Header {
	cols := []segment.Column{
		segment.NewColumn("[Store].[State]", states),
		segment.NewColumn("[Product].[Name]", products),
	}
	return segment.NewHeader(
		"FoodMart", []byte("checksum"), "Sales", "[Measures].[Unit Sales]", "sales_fact",
		cols, nil, bitkey.Of(0, 1), nil,
	)
}

func TestRollupSumsAcrossProjectedAxis(t *testing.T) {
	h1 := makeHeader([]segment.Value{"CA"}, []segment.Value{"Widget"})
	b1 := segment.NewDenseObjectBody(
		[][]segment.Value{{"CA"}, {"Widget"}}, []bool{false, false},
		[]segment.Value{10.0},
	)

	h2 := makeHeader([]segment.Value{"WA"}, []segment.Value{"Widget"})
	b2 := segment.NewDenseObjectBody(
		[][]segment.Value{{"WA"}, {"Widget"}}, []bool{false, false},
		[]segment.Value{5.0},
	)

	builder := rollup.NewBuilder(0.25)
	keep := map[string]bool{"[Product].[Name]": true}
	header, body := builder.Rollup(
		[]rollup.Input{{Header: h1, Body: b1}, {Header: h2, Body: b2}},
		keep, bitkey.Of(1), rollup.SumAggregator{},
	)

	require.NotNil(t, header)
	col, ok := header.GetConstrainedColumn("[Product].[Name]")
	require.True(t, ok)
	require.Equal(t, []segment.Value{"Widget"}, col.Values())

	_, ok = header.GetConstrainedColumn("[Store].[State]")
	require.False(t, ok)

	total := body.CellCount()
	require.GreaterOrEqual(t, total, 1)

	v, ok := body.Get(0, segment.NewCellKey([]int32{0}))
	require.True(t, ok)
	require.Equal(t, int64(15), v)
}

func TestRollupEmptyInputsReturnEmptyDenseObjectBody(t *testing.T) {
	builder := rollup.NewBuilder(0.25)
	header, body := builder.Rollup(nil, nil, bitkey.Empty(), rollup.SumAggregator{})
	require.Nil(t, header)
	require.Equal(t, segment.BodyDenseObject, body.Kind)
	require.Equal(t, 0, body.CellCount())
}
