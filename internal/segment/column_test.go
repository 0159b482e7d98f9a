package segment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/segment"
)

func TestColumnSortsAndDedupesWithNullLast(t *testing.T) {
	col := segment.NewColumn("[Store].[State]", []segment.Value{"WA", nil, "CA", "WA"})
	require.Equal(t, []segment.Value{"CA", "WA", nil}, col.Values())
}

func TestColumnMergeWildcardAbsorbs(t *testing.T) {
	wild := segment.Wildcard("[Store].[State]")
	constrained := segment.NewColumn("[Store].[State]", []segment.Value{"CA"})

	merged := wild.Merge(constrained)
	require.True(t, merged.IsWildcard())

	merged2 := constrained.Merge(wild)
	require.True(t, merged2.IsWildcard())
}

func TestColumnMergeUnion(t *testing.T) {
	a := segment.NewColumn("[Store].[State]", []segment.Value{"CA", "WA"})
	b := segment.NewColumn("[Store].[State]", []segment.Value{"WA", "OR"})

	merged := a.Merge(b)
	require.Equal(t, []segment.Value{"CA", "OR", "WA"}, merged.Values())
}

func TestColumnMergePanicsOnMismatchedExpr(t *testing.T) {
	a := segment.NewColumn("[Store].[State]", []segment.Value{"CA"})
	b := segment.NewColumn("[Store].[City]", []segment.Value{"LA"})

	require.Panics(t, func() { a.Merge(b) })
}

func TestColumnEqualsAndHashCode(t *testing.T) {
	a := segment.NewColumn("[Store].[State]", []segment.Value{"CA", "WA"})
	b := segment.NewColumn("[Store].[State]", []segment.Value{"WA", "CA"})

	require.True(t, a.Equals(b))
	require.Equal(t, a.HashCode(), b.HashCode())
}

func TestColumnContains(t *testing.T) {
	col := segment.NewColumn("[Store].[State]", []segment.Value{"CA", "WA"})
	require.True(t, col.Contains("CA"))
	require.False(t, col.Contains("OR"))

	wild := segment.Wildcard("[Store].[State]")
	require.True(t, wild.Contains("anything"))
}
