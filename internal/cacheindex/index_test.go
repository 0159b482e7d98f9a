package cacheindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

const token = "manager-token"

func newTestIndex(t *testing.T, maxHeaders int) *Index {
	t.Helper()
	idx, err := New(&Config{OwnerToken: token, MaxHeaders: maxHeaders})
	require.NoError(t, err)
	return idx
}

func header(cube, measure string, bk bitkey.BitKey, cols []segment.Column, excluded []segment.Column) *segment.Header {
	return segment.NewHeader("sales", []byte("chk"), cube, measure, "fact_sales", cols, nil, bk, excluded)
}

func TestAddRejectsWrongToken(t *testing.T) {
	idx := newTestIndex(t, 0)
	h := header("SalesCube", "Sales", bitkey.Of(0), nil, nil)
	_, err := idx.Add("wrong-token", h)
	require.Error(t, err)
	require.True(t, cerr.IsInvariantError(err))
}

func TestAddThenLocateExactMatch(t *testing.T) {
	idx := newTestIndex(t, 0)
	country := segment.NewColumn("[Store].[Country]", []segment.Value{"USA", "Canada"})
	h := header("SalesCube", "Sales", bitkey.Of(0), []segment.Column{country}, nil)

	added, err := idx.Add(token, h)
	require.NoError(t, err)
	require.True(t, added)

	results, err := idx.Locate(token, h.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Equals(h))
}

func TestLocateExcludesRegionMatch(t *testing.T) {
	idx := newTestIndex(t, 0)
	country := segment.NewColumn("[Store].[Country]", []segment.Value{"USA", "Canada"})
	excluded := segment.NewColumn("[Store].[Country]", []segment.Value{"USA"})
	h := header("SalesCube", "Sales", bitkey.Of(0), []segment.Column{country}, []segment.Column{excluded})
	_, err := idx.Add(token, h)
	require.NoError(t, err)

	results, err := idx.Locate(token, h.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	}, nil)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestLocateMissingConstrainedColumnIsInvariantViolation(t *testing.T) {
	idx := newTestIndex(t, 0)
	h := header("SalesCube", "Sales", bitkey.Of(0), nil, nil)
	_, err := idx.Add(token, h)
	require.NoError(t, err)

	_, err = idx.Locate(token, h.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	}, nil)
	require.Error(t, err)
	require.True(t, cerr.IsInvariantError(err))
}

func TestIntersectRegionImplicitlyIntersectsUnconstrainedColumns(t *testing.T) {
	idx := newTestIndex(t, 0)
	h := header("SalesCube", "Sales", bitkey.Of(0), nil, nil)
	_, err := idx.Add(token, h)
	require.NoError(t, err)

	region := []segment.Column{segment.NewColumn("[Store].[Country]", []segment.Value{"USA"})}
	results, err := idx.IntersectRegion(token, h.Provenance(), region)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestIntersectRegionRequiresSharedValue(t *testing.T) {
	idx := newTestIndex(t, 0)
	country := segment.NewColumn("[Store].[Country]", []segment.Value{"USA"})
	h := header("SalesCube", "Sales", bitkey.Of(0), []segment.Column{country}, nil)
	_, err := idx.Add(token, h)
	require.NoError(t, err)

	region := []segment.Column{segment.NewColumn("[Store].[Country]", []segment.Value{"Canada"})}
	results, err := idx.IntersectRegion(token, h.Provenance(), region)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestFindRollupCandidatesReturnsAncestorSingleton(t *testing.T) {
	idx := newTestIndex(t, 0)

	ancestorCols := []segment.Column{
		segment.NewColumn("[Store].[Country]", []segment.Value{"USA", "Canada"}),
		segment.Wildcard("[Time].[Year]"),
	}
	ancestor := header("SalesCube", "Sales", bitkey.Of(0, 1), ancestorCols, nil)
	_, err := idx.Add(token, ancestor)
	require.NoError(t, err)

	candidates, err := idx.FindRollupCandidates(token, ancestor.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.True(t, candidates[0].Equals(ancestor))
}

func TestFindRollupCandidatesSkipsNonMatchingCoordinate(t *testing.T) {
	idx := newTestIndex(t, 0)
	ancestorCols := []segment.Column{
		segment.NewColumn("[Store].[Country]", []segment.Value{"Canada"}),
	}
	ancestor := header("SalesCube", "Sales", bitkey.Of(0, 1), ancestorCols, nil)
	_, err := idx.Add(token, ancestor)
	require.NoError(t, err)

	candidates, err := idx.FindRollupCandidates(token, ancestor.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	})
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestRemoveAndLen(t *testing.T) {
	idx := newTestIndex(t, 0)
	h := header("SalesCube", "Sales", bitkey.Of(0), nil, nil)
	_, err := idx.Add(token, h)
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	removed, err := idx.Remove(token, h)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, 0, idx.Len())
}

func TestAddEvictsWhenAtCapacity(t *testing.T) {
	idx := newTestIndex(t, 1)
	h1 := header("SalesCube", "Sales", bitkey.Of(0), nil, nil)
	h2 := header("SalesCube", "Profit", bitkey.Of(0), nil, nil)

	_, err := idx.Add(token, h1)
	require.NoError(t, err)
	_, err = idx.Add(token, h2)
	require.NoError(t, err)

	require.Equal(t, 1, idx.Len())
}
