package segment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/segment"
)

func TestAxisOrdinalLookup(t *testing.T) {
	col := segment.NewColumn("[Store].[State]", []segment.Value{"CA", "WA", nil})
	axis := segment.NewAxis(col, "[Store].[State] IN ('CA','WA')")

	require.True(t, axis.HasNull)
	require.Equal(t, 3, axis.Len())

	ord, ok := axis.Ordinal("WA")
	require.True(t, ok)
	require.Equal(t, int32(1), ord)

	nullOrd, ok := axis.Ordinal(nil)
	require.True(t, ok)
	require.Equal(t, int32(2), nullOrd)

	_, ok = axis.Ordinal("OR")
	require.False(t, ok)
}
