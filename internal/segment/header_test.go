package segment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/segment"
)

func newTestHeader(states []segment.Value) *segment.Header {
	col := segment.NewColumn("[Store].[State]", states)
	return segment.NewHeader(
		"FoodMart", []byte("checksum-v1"), "Sales", "[Measures].[Unit Sales]", "sales_fact",
		[]segment.Column{col}, nil, bitkey.Of(0), nil,
	)
}

func TestHeaderUniqueIDIsDeterministic(t *testing.T) {
	h1 := newTestHeader([]segment.Value{"CA", "WA"})
	h2 := newTestHeader([]segment.Value{"CA", "WA"})

	require.Equal(t, h1.UniqueID(), h2.UniqueID())
	require.True(t, h1.Equals(h2))
}

func TestHeaderUniqueIDDiffersOnPredicateChange(t *testing.T) {
	h1 := newTestHeader([]segment.Value{"CA"})
	h2 := newTestHeader([]segment.Value{"CA", "WA"})

	require.NotEqual(t, h1.UniqueID(), h2.UniqueID())
	require.False(t, h1.Equals(h2))
}

func TestHeaderGetConstrainedColumn(t *testing.T) {
	h := newTestHeader([]segment.Value{"CA"})

	col, ok := h.GetConstrainedColumn("[Store].[State]")
	require.True(t, ok)
	require.Equal(t, []segment.Value{"CA"}, col.Values())

	_, ok = h.GetConstrainedColumn("[Store].[City]")
	require.False(t, ok)
}

func TestHeaderClonePreservesUntouchedColumns(t *testing.T) {
	h := newTestHeader([]segment.Value{"CA"})
	replacement := segment.NewColumn("[Store].[State]", []segment.Value{"CA", "OR"})

	cloned := h.Clone([]segment.Column{replacement})
	col, ok := cloned.GetConstrainedColumn("[Store].[State]")
	require.True(t, ok)
	require.Equal(t, []segment.Value{"CA", "OR"}, col.Values())
	require.NotEqual(t, h.UniqueID(), cloned.UniqueID())
}

func TestHeaderIsSubsetChecksProvenanceAndBitKey(t *testing.T) {
	h1 := newTestHeader([]segment.Value{"CA"})
	h2 := newTestHeader([]segment.Value{"WA"})
	require.True(t, h1.IsSubset(h2))

	h3 := segment.NewHeader(
		"FoodMart", []byte("checksum-v1"), "Sales", "[Measures].[Unit Sales]", "sales_fact",
		nil, nil, bitkey.Of(0, 1), nil,
	)
	require.False(t, h1.IsSubset(h3))
}
