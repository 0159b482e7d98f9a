package bitkey_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
)

func TestUnionIntersection(t *testing.T) {
	a := bitkey.Of(0, 2, 4)
	b := bitkey.Of(2, 3)

	union := a.Union(b)
	require.Equal(t, []int{0, 2, 3, 4}, union.Bits())

	inter := a.Intersection(b)
	require.Equal(t, []int{2}, inter.Bits())
}

func TestSuperset(t *testing.T) {
	parent := bitkey.Of(0, 1, 2, 3)
	child := bitkey.Of(1, 2)

	require.True(t, parent.IsSuperset(child))
	require.False(t, child.IsSuperset(parent))
	require.True(t, child.IsSubset(parent))
}

func TestEqualsAndHashCode(t *testing.T) {
	a := bitkey.Of(1, 5, 9)
	b := bitkey.Of(9, 5, 1)

	require.True(t, a.Equals(b))
	require.Equal(t, a.HashCode(), b.HashCode())
	require.Equal(t, a.MapKey(), b.MapKey())
}

func TestCardinality(t *testing.T) {
	k := bitkey.Of(0, 1, 2)
	require.Equal(t, 3, k.Cardinality())

	empty := bitkey.Empty()
	require.True(t, empty.IsEmpty())
	require.Equal(t, 0, empty.Cardinality())
}

func TestSetIsImmutable(t *testing.T) {
	k := bitkey.Of(1)
	k2 := k.Set(2)

	require.False(t, k.Test(2))
	require.True(t, k2.Test(2))
	require.True(t, k2.Test(1))
}
