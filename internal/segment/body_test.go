package segment_test

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/segment"
)

func TestDenseDoubleBodyGetAndNulls(t *testing.T) {
	axisValues := [][]segment.Value{{"CA", "WA"}}
	nulls := bitset.New(2)
	nulls.Set(1)

	body := segment.NewDenseDoubleBody(axisValues, []bool{false}, []float64{10.5, 0}, nulls)

	v, ok := body.Get(0, segment.CellKey{})
	require.True(t, ok)
	require.Equal(t, 10.5, v)

	v, ok = body.Get(1, segment.CellKey{})
	require.True(t, ok)
	require.Nil(t, v)
}

func TestSparseBodyGetByKey(t *testing.T) {
	key := segment.NewCellKey([]int32{0, 2})
	cells := map[segment.CellKey]segment.Value{key: 42.0}
	body := segment.NewSparseBody([][]segment.Value{{"a"}, {"x", "y", "z"}}, []bool{false, false}, cells)

	v, ok := body.Get(0, key)
	require.True(t, ok)
	require.Equal(t, 42.0, v)

	missing := segment.NewCellKey([]int32{0, 0})
	_, ok = body.Get(0, missing)
	require.False(t, ok)
}

func TestBodyDensity(t *testing.T) {
	axisValues := [][]segment.Value{{"a", "b"}, {"x", "y"}}
	body := segment.NewDenseObjectBody(axisValues, []bool{false, false}, []segment.Value{1.0, nil, 3.0, 4.0})
	require.InDelta(t, 0.75, body.Density(), 0.001)
}
