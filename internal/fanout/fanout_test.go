package fanout

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func TestMapEmpty(t *testing.T) {
	called := false
	out, err := Map(context.Background(), []int(nil), 4, func(context.Context, int, int) (int, error) {
		called = true
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, called)
}

func TestMapPreservesOrderUnderRandomLatency(t *testing.T) {
	const n = 12
	items := make([]int, n)
	for i := range items {
		items[i] = i * 10
	}

	for limit := 1; limit <= n; limit++ {
		var inFlight, peak atomic.Int64
		out, err := Map(context.Background(), items, limit, func(_ context.Context, i int, item int) (int, error) {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(time.Duration(rand.IntN(3000)) * time.Microsecond)
			inFlight.Add(-1)
			assert.Equal(t, items[i], item)
			return item + 1, nil
		})
		require.NoError(t, err, "limit %d", limit)
		require.Len(t, out, n)
		for i, v := range out {
			assert.Equal(t, items[i]+1, v, "limit %d index %d", limit, i)
		}
		assert.LessOrEqual(t, peak.Load(), int64(limit), "limit %d exceeded", limit)
	}
}

func TestMapSerialRunsInOrder(t *testing.T) {
	var seen []int
	_, err := Map(context.Background(), []string{"a", "b", "c", "d"}, 1, func(_ context.Context, i int, _ string) (struct{}, error) {
		seen = append(seen, i)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}

func TestMapClampsLimit(t *testing.T) {
	var calls atomic.Int64
	out, err := Map(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, _ int, item int) (int, error) {
		calls.Add(1)
		return item * 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, out)
	assert.Equal(t, int64(3), calls.Load())

	out, err = Map(context.Background(), []int{1, 2}, 100, func(_ context.Context, _ int, item int) (int, error) {
		return item, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out)
}

func TestMapStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int64
	_, err := Map(context.Background(), make([]int, 50), 1, func(_ context.Context, i int, _ int) (int, error) {
		calls.Add(1)
		if i == 2 {
			return 0, boom
		}
		return i, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), calls.Load())
}

func TestMapHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int64
	_, err := Map(ctx, make([]int, 5), 2, func(context.Context, int, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
