package poset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/poset"
)

func TestAncestorsOrderedBySmallestExtraBitsFirst(t *testing.T) {
	s := poset.New()
	s.Add(bitkey.Of(0, 1))
	s.Add(bitkey.Of(0, 1, 2))
	s.Add(bitkey.Of(0, 1, 2, 3))
	s.Add(bitkey.Of(5, 6)) // unrelated, never an ancestor of {0,1}

	ancestors := s.Ancestors(bitkey.Of(0, 1))
	require.Len(t, ancestors, 2)
	require.Equal(t, 3, ancestors[0].Cardinality())
	require.Equal(t, 4, ancestors[1].Cardinality())
}

func TestAncestorsExcludesSelf(t *testing.T) {
	s := poset.New()
	target := bitkey.Of(0, 1)
	s.Add(target)
	s.Add(bitkey.Of(0, 1, 2))

	ancestors := s.Ancestors(target)
	require.Len(t, ancestors, 1)
}

func TestAddDedupesByContentNotIdentity(t *testing.T) {
	s := poset.New()
	s.Add(bitkey.Of(0, 1))
	s.Add(bitkey.Of(1, 0)) // same bits, distinct bitmap instance
	require.Equal(t, 1, s.Len())
}

func TestRemove(t *testing.T) {
	s := poset.New()
	k := bitkey.Of(2, 3)
	s.Add(k)
	require.True(t, s.Contains(k))
	s.Remove(k)
	require.False(t, s.Contains(k))
}
