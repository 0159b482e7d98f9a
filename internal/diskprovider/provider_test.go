package diskprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

func testHeader(t *testing.T, measure string) *segment.Header {
	t.Helper()
	cols := []segment.Column{segment.NewColumn("[Store].[Country]", []segment.Value{"USA"})}
	return segment.NewHeader("sales", []byte("chk"), "SalesCube", measure, "fact_sales", cols, nil, bitkey.Of(0), nil)
}

func testBody() *segment.Body {
	return segment.NewDenseDoubleBody(
		[][]segment.Value{{"USA"}},
		[]bool{false},
		[]float64{42.0},
		nil,
	)
}

func TestProviderPutGetRoundTrip(t *testing.T) {
	p, err := New(&Config{Directory: t.TempDir(), Prefix: "segment"})
	require.NoError(t, err)

	ctx := context.Background()
	header := testHeader(t, "Sales")
	body := testBody()

	created, err := p.Put(ctx, header, body).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.True(t, created)

	result, err := p.Get(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, segment.BodyDenseDouble, result.Body.Kind)
	require.Equal(t, []float64{42.0}, result.Body.DenseDoubleValues)
}

func TestProviderContainsAndRemove(t *testing.T) {
	p, err := New(&Config{Directory: t.TempDir(), Prefix: "segment"})
	require.NoError(t, err)

	ctx := context.Background()
	header := testHeader(t, "Sales")

	exists, err := p.Contains(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = p.Put(ctx, header, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)

	exists, err = p.Contains(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.True(t, exists)

	removed, err := p.Remove(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.True(t, removed)

	exists, err = p.Contains(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestProviderGetSegmentHeadersListsAllEntries(t *testing.T) {
	p, err := New(&Config{Directory: t.TempDir(), Prefix: "segment"})
	require.NoError(t, err)

	ctx := context.Background()
	h1 := testHeader(t, "Sales")
	h2 := testHeader(t, "Profit")

	_, err = p.Put(ctx, h1, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	_, err = p.Put(ctx, h2, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)

	headers, err := p.GetSegmentHeaders(ctx).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.Len(t, headers, 2)
}

func TestProviderDoesNotEchoLocalMutationsToListeners(t *testing.T) {
	p, err := New(&Config{Directory: t.TempDir(), Prefix: "segment"})
	require.NoError(t, err)

	ctx := context.Background()
	header := testHeader(t, "Sales")

	var events []provider.Event
	p.AddListener(provider.EventListenerFunc(func(evt provider.Event) {
		events = append(events, evt)
	}))

	_, err = p.Put(ctx, header, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	_, err = p.Remove(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)

	require.Empty(t, events)
}
