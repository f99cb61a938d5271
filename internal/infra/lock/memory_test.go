//go:build unit

package lock_test

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"commerce-server/internal/infra/lock"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryLocker() (*lock.MemoryLocker, *clock.MockClock) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return lock.NewMemoryLocker(clk, nil, slog.New(slog.DiscardHandler)), clk
}

func TestMemoryLocker_TryAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire on a held key conflicts", func(t *testing.T) {
		l, _ := newMemoryLocker()

		held, err := l.TryAcquire(ctx, "coupon:1", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "coupon:1", held.Key())

		_, err = l.TryAcquire(ctx, "coupon:1", time.Second)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrLockNotAcquired))
		assert.True(t, errs.HasCategory(err, errs.ErrConcurrencyConflict))
	})

	t.Run("different keys do not interfere", func(t *testing.T) {
		l, _ := newMemoryLocker()

		_, err := l.TryAcquire(ctx, "balance:1", time.Second)
		require.NoError(t, err)
		_, err = l.TryAcquire(ctx, "balance:2", time.Second)
		require.NoError(t, err)
	})

	t.Run("lock is free again after release", func(t *testing.T) {
		l, _ := newMemoryLocker()

		held, err := l.TryAcquire(ctx, "k", time.Second)
		require.NoError(t, err)
		require.NoError(t, held.Release(ctx))

		locked, err := l.IsLocked(ctx, "k")
		require.NoError(t, err)
		assert.False(t, locked)

		_, err = l.TryAcquire(ctx, "k", time.Second)
		require.NoError(t, err)
	})

	t.Run("non-positive hold timeout is rejected", func(t *testing.T) {
		l, _ := newMemoryLocker()

		_, err := l.TryAcquire(ctx, "k", 0)
		assert.ErrorIs(t, err, shared.ErrInvalidHoldTimeout)
		_, err = l.TryAcquire(ctx, "k", -time.Second)
		assert.ErrorIs(t, err, shared.ErrInvalidHoldTimeout)
	})

	t.Run("only one of many concurrent callers wins", func(t *testing.T) {
		l, _ := newMemoryLocker()

		var (
			wg      sync.WaitGroup
			winners atomic.Int32
			start   = make(chan struct{})
		)
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := l.TryAcquire(ctx, "hot", time.Minute); err == nil {
					winners.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
	})
}

func TestMemoryLocker_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("lease lapses after the hold timeout", func(t *testing.T) {
		l, clk := newMemoryLocker()

		_, err := l.TryAcquire(ctx, "k", 10*time.Second)
		require.NoError(t, err)

		clk.Add(9 * time.Second)
		locked, _ := l.IsLocked(ctx, "k")
		assert.True(t, locked)

		clk.Add(time.Second)
		locked, _ = l.IsLocked(ctx, "k")
		assert.False(t, locked)

		_, err = l.TryAcquire(ctx, "k", 10*time.Second)
		require.NoError(t, err)
	})

	t.Run("stale holder cannot release the new owner's lock", func(t *testing.T) {
		l, clk := newMemoryLocker()

		stale, err := l.TryAcquire(ctx, "k", time.Second)
		require.NoError(t, err)

		clk.Add(2 * time.Second)
		_, err = l.TryAcquire(ctx, "k", time.Minute)
		require.NoError(t, err)

		require.NoError(t, stale.Release(ctx))

		locked, _ := l.IsLocked(ctx, "k")
		assert.True(t, locked)
		_, err = l.TryAcquire(ctx, "k", time.Minute)
		assert.True(t, errs.Is(err, errs.ErrLockNotAcquired))
	})
}

func TestMemoryLocker_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("abandoned leases are forgotten once expired", func(t *testing.T) {
		l, clk := newMemoryLocker()
		for i := range 20 {
			_, err := l.TryAcquire(ctx, keyOf(i), time.Second)
			require.NoError(t, err)
		}
		live, err := l.TryAcquire(ctx, "live", time.Minute)
		require.NoError(t, err)

		clk.Add(2 * time.Second)
		assert.Equal(t, 20, l.Sweep())
		assert.Equal(t, 1, l.Len())

		locked, _ := l.IsLocked(ctx, "live")
		assert.True(t, locked)
		require.NoError(t, live.Release(ctx))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("checking an expired lease forgets it", func(t *testing.T) {
		l, clk := newMemoryLocker()
		_, err := l.TryAcquire(ctx, "k", time.Second)
		require.NoError(t, err)

		clk.Add(time.Second)
		locked, _ := l.IsLocked(ctx, "k")
		assert.False(t, locked)
		assert.Equal(t, 0, l.Len())
	})
}

func keyOf(i int) string {
	return "coupon-" + strconv.Itoa(i)
}
