//go:build unit

package cache_test

import (
	"context"
	"testing"
	"time"

	"commerce-server/internal/infra/cache"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/keygen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCache() (*cache.MemoryCache, *clock.MockClock) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return cache.NewMemoryCache(clk, nil), clk
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("returns what was stored until the ttl elapses", func(t *testing.T) {
		c, clk := newMemoryCache()
		require.NoError(t, c.Set(ctx, "product:detail:1", []byte(`{"id":1}`), time.Minute))

		got, found, err := c.Get(ctx, "product:detail:1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"id":1}`, string(got))

		clk.Add(time.Minute)
		_, found, err = c.Get(ctx, "product:detail:1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("missing key is a miss, not an error", func(t *testing.T) {
		c, _ := newMemoryCache()
		_, found, err := c.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("stored bytes are isolated from the caller", func(t *testing.T) {
		c, _ := newMemoryCache()
		value := []byte("abc")
		require.NoError(t, c.Set(ctx, "k", value, time.Minute))
		value[0] = 'z'

		got, _, _ := c.Get(ctx, "k")
		assert.Equal(t, "abc", string(got))
		got[1] = 'z'

		again, _, _ := c.Get(ctx, "k")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("non-positive ttl is rejected", func(t *testing.T) {
		c, _ := newMemoryCache()
		assert.Error(t, c.Set(ctx, "k", []byte("v"), 0))
		assert.Equal(t, 0, c.Len())
	})
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete of an absent key succeeds", func(t *testing.T) {
		c, _ := newMemoryCache()
		assert.NoError(t, c.Delete(ctx, "absent"))
	})

	t.Run("pattern removes only matching keys", func(t *testing.T) {
		c, _ := newMemoryCache()
		keys := []string{
			keygen.OrderListKey(1, 20, 0),
			keygen.OrderListKey(1, 20, 20),
			keygen.OrderListKey(2, 20, 0),
			keygen.ProductKey(1),
		}
		for _, k := range keys {
			require.NoError(t, c.Set(ctx, k, []byte("x"), time.Minute))
		}

		n, err := c.DeleteByPattern(ctx, keygen.OrderListPattern(1))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, found, _ := c.Get(ctx, keygen.OrderListKey(2, 20, 0))
		assert.True(t, found)
		_, found, _ = c.Get(ctx, keygen.ProductKey(1))
		assert.True(t, found)
		_, found, _ = c.Get(ctx, keygen.OrderListKey(1, 20, 20))
		assert.False(t, found)
	})
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("expired entry is dropped when read", func(t *testing.T) {
		c, clk := newMemoryCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		clk.Add(time.Minute)
		_, found, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("sweep drops only expired entries", func(t *testing.T) {
		c, clk := newMemoryCache()
		for offset := range 50 {
			require.NoError(t, c.Set(ctx, keygen.ProductListKey(20, offset), []byte("[]"), time.Minute))
		}
		require.NoError(t, c.Set(ctx, keygen.ProductKey(1), []byte("{}"), time.Hour))

		clk.Add(2 * time.Minute)
		assert.Equal(t, 50, c.Sweep())
		assert.Equal(t, 1, c.Len())

		_, found, _ := c.Get(ctx, keygen.ProductKey(1))
		assert.True(t, found)
	})

	t.Run("sweeper stops when told to", func(t *testing.T) {
		c, _ := newMemoryCache()
		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			c.SweepEvery(time.Millisecond, stop)
			close(done)
		}()

		close(stop)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
	})
}
