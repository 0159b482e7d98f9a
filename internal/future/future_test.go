package future_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/future"
	"github.com/cubedata/segcache/pkg/cerr"
)

func TestCompletedResolvesImmediately(t *testing.T) {
	f := future.Completed(42)
	require.True(t, f.Done())

	val, err := f.Await(context.Background(), 0, "lru", cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.Equal(t, 42, val)
}

func TestFailedPropagatesError(t *testing.T) {
	boom := context.Canceled
	f := future.Failed[string](boom)

	_, err := f.Await(context.Background(), 0, "disk", cerr.TimeoutKindWrite)
	require.ErrorIs(t, err, boom)
}

func TestAwaitTimesOut(t *testing.T) {
	f, _ := future.New[int]()
	_, err := f.Await(context.Background(), 10*time.Millisecond, "disk", cerr.TimeoutKindLookup)
	require.Error(t, err)
	require.True(t, cerr.IsTimeoutError(err))
}

func TestResolveUnblocksAwait(t *testing.T) {
	f, resolve := future.New[string]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		resolve("done", nil)
	}()

	val, err := f.Await(context.Background(), time.Second, "disk", cerr.TimeoutKindRead)
	require.NoError(t, err)
	require.Equal(t, "done", val)
}
