package manager_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/future"
	"github.com/cubedata/segcache/internal/manager"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/providertest"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/cerr"
)

func testHeader(measure string) *segment.Header {
	cols := []segment.Column{segment.NewColumn("[Store].[Country]", []segment.Value{"USA"})}
	return segment.NewHeader("sales", []byte("chk"), "SalesCube", measure, "fact_sales", cols, nil, bitkey.Of(0), nil)
}

func testBody() *segment.Body {
	return segment.NewDenseDoubleBody(
		[][]segment.Value{{"USA"}}, []bool{false}, []float64{42.0}, nil,
	)
}

func newManager(t *testing.T, providers ...provider.CacheProvider) *manager.Manager {
	t.Helper()
	m, err := manager.New(&manager.Config{
		Providers:     providers,
		ReadTimeout:   100 * time.Millisecond,
		WriteTimeout:  100 * time.Millisecond,
		LookupTimeout: 100 * time.Millisecond,
		ScanTimeout:   100 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close(context.Background())
	})
	return m
}

func TestPutThenGetRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	body := testBody()

	mp.EXPECT().Put(gomock.Any(), header, body).Return(future.Completed(true))
	mp.EXPECT().Get(gomock.Any(), header).Return(future.Completed(provider.GetResult{Body: body, Found: true}))

	m := newManager(t, mp)

	require.NoError(t, m.Put(context.Background(), header, body))

	got, found, err := m.Get(context.Background(), header)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, body, got)
}

func TestGetMissReturnsNotFoundWithoutError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	mp.EXPECT().Get(gomock.Any(), header).Return(future.Completed(provider.GetResult{Found: false}))

	m := newManager(t, mp)

	_, found, err := m.Get(context.Background(), header)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPutPropagatesProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	body := testBody()
	boom := cerr.NewProviderError(errors.New("disk full"), cerr.ErrorCodeDiskFull, "mock", "put", "write failed")
	mp.EXPECT().Put(gomock.Any(), header, body).Return(future.Failed[bool](boom))

	m := newManager(t, mp)

	err := m.Put(context.Background(), header, body)
	require.Error(t, err)
	require.True(t, cerr.IsProviderError(err))
}

func TestGetTimesOutWhenProviderNeverResolves(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	stuck, _ := future.New[provider.GetResult]()
	mp.EXPECT().Get(gomock.Any(), header).Return(stuck)

	m, err := manager.New(&manager.Config{
		Providers:   []provider.CacheProvider{mp},
		ReadTimeout: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })

	_, _, err = m.Get(context.Background(), header)
	require.Error(t, err)
	require.True(t, cerr.IsTimeoutError(err))
}

func TestRemoveFansOutToProvidersThenIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	body := testBody()
	mp.EXPECT().Put(gomock.Any(), header, body).Return(future.Completed(true))
	mp.EXPECT().Remove(gomock.Any(), header).Return(future.Completed(true))

	m := newManager(t, mp)
	require.NoError(t, m.Put(context.Background(), header, body))
	require.NoError(t, m.Remove(context.Background(), header))

	results, err := m.Locate(context.Background(), header.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	}, nil)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestAwaitLoadWakesOnLoadSucceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	body := testBody()
	// NotifyLoadSucceeded is retried below until AwaitLoad's waiter is
	// registered, so Put may fire more than once.
	mp.EXPECT().Put(gomock.Any(), header, body).Return(future.Completed(true)).AnyTimes()

	m := newManager(t, mp)

	done := make(chan struct{})
	var gotBody *segment.Body
	var gotErr error
	go func() {
		gotBody, gotErr = m.AwaitLoad(context.Background(), header)
		close(done)
	}()

	require.Eventually(t, func() bool {
		m.NotifyLoadSucceeded(header, body)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	require.NoError(t, gotErr)
	require.Equal(t, body, gotBody)

	results, err := m.Locate(context.Background(), header.Provenance(), bitkey.Of(0), map[string]segment.Value{
		"[Store].[Country]": "USA",
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestAwaitLoadWakesOnLoadFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().AddListener(gomock.Any())

	header := testHeader("Sales")
	m := newManager(t, mp)

	done := make(chan struct{})
	var gotErr error
	go func() {
		_, gotErr = m.AwaitLoad(context.Background(), header)
		close(done)
	}()

	boom := errors.New("table locked")
	require.Eventually(t, func() bool {
		m.NotifyLoadFailed(header, boom)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	require.ErrorIs(t, gotErr, boom)
}

func TestOnSegmentCacheEventAddsHeaderToIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := providertest.NewMockCacheProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()

	var listener provider.EventListener
	mp.EXPECT().AddListener(gomock.Any()).Do(func(l provider.EventListener) { listener = l })

	header := testHeader("Sales")
	m := newManager(t, mp)
	require.NotNil(t, listener)

	listener.OnSegmentCacheEvent(provider.Event{Kind: provider.EntryCreated, Header: header})

	require.Eventually(t, func() bool {
		results, err := m.Locate(context.Background(), header.Provenance(), bitkey.Of(0), map[string]segment.Value{
			"[Store].[Country]": "USA",
		}, nil)
		return err == nil && len(results) == 1
	}, time.Second, time.Millisecond)
}
