package lruprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

func testHeader(measure string) *segment.Header {
	cols := []segment.Column{segment.NewColumn("[Store].[Country]", []segment.Value{"USA"})}
	return segment.NewHeader("sales", []byte("chk"), "SalesCube", measure, "fact_sales", cols, nil, bitkey.Of(0), nil)
}

func testBody() *segment.Body {
	return segment.NewDenseDoubleBody([][]segment.Value{{"USA"}}, []bool{false}, []float64{1}, nil)
}

func TestProviderPutGetRoundTrip(t *testing.T) {
	p, err := New(&Config{Capacity: 4})
	require.NoError(t, err)

	ctx := context.Background()
	header := testHeader("Sales")

	created, err := p.Put(ctx, header, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindWrite)
	require.NoError(t, err)
	require.True(t, created)

	result, err := p.Get(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.True(t, result.Found)
}

func TestProviderEvictsBeyondCapacity(t *testing.T) {
	p, err := New(&Config{Capacity: 1})
	require.NoError(t, err)

	ctx := context.Background()
	h1, h2 := testHeader("Sales"), testHeader("Profit")

	_, err = p.Put(ctx, h1, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindWrite)
	require.NoError(t, err)
	_, err = p.Put(ctx, h2, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindWrite)
	require.NoError(t, err)

	headers, err := p.GetSegmentHeaders(ctx).Await(ctx, 0, p.Name(), cerr.TimeoutKindScan)
	require.NoError(t, err)
	require.Len(t, headers, 1)
}

func TestProviderDoesNotEchoLocalMutationsToListeners(t *testing.T) {
	p, err := New(&Config{Capacity: 4})
	require.NoError(t, err)

	ctx := context.Background()
	header := testHeader("Sales")

	var events []provider.Event
	p.AddListener(provider.EventListenerFunc(func(evt provider.Event) {
		events = append(events, evt)
	}))

	_, err = p.Put(ctx, header, testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindWrite)
	require.NoError(t, err)
	_, err = p.Remove(ctx, header).Await(ctx, 0, p.Name(), cerr.TimeoutKindWrite)
	require.NoError(t, err)

	require.Empty(t, events)
}

func TestTearDownPurgesCache(t *testing.T) {
	p, err := New(&Config{Capacity: 4})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = p.Put(ctx, testHeader("Sales"), testBody()).Await(ctx, 0, p.Name(), cerr.TimeoutKindWrite)
	require.NoError(t, err)

	require.NoError(t, p.TearDown(ctx))

	headers, err := p.GetSegmentHeaders(ctx).Await(ctx, 0, p.Name(), cerr.TimeoutKindScan)
	require.NoError(t, err)
	require.Empty(t, headers)
}
