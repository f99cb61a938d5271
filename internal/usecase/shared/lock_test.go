//go:build unit

package shared_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"commerce-server/internal/infra/lock"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard() (*shared.LockGuard, *lock.MemoryLocker) {
	logger := slog.New(slog.DiscardHandler)
	locker := lock.NewMemoryLocker(clock.NewRealClock(), nil, logger)
	return shared.NewLockGuard(locker, config.LockConfig{HoldTimeout: 5 * time.Second}, logger), locker
}

func TestLockGuard_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("holds the key while fn runs and releases after", func(t *testing.T) {
		guard, locker := newGuard()

		err := guard.Run(ctx, "balance:1", func(ctx context.Context) error {
			locked, err := locker.IsLocked(ctx, "balance:1")
			require.NoError(t, err)
			assert.True(t, locked)
			return nil
		})
		require.NoError(t, err)

		locked, _ := locker.IsLocked(ctx, "balance:1")
		assert.False(t, locked)
	})

	t.Run("fn error is returned and the lock still released", func(t *testing.T) {
		guard, locker := newGuard()
		boom := errors.New("boom")

		err := guard.Run(ctx, "k", func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)

		locked, _ := locker.IsLocked(ctx, "k")
		assert.False(t, locked)
	})

	t.Run("lock is released when fn panics", func(t *testing.T) {
		guard, locker := newGuard()

		assert.Panics(t, func() {
			_ = guard.Run(ctx, "k", func(context.Context) error { panic("kaboom") })
		})

		locked, _ := locker.IsLocked(ctx, "k")
		assert.False(t, locked)
	})

	t.Run("nested run on the same key fails fast without calling fn", func(t *testing.T) {
		guard, _ := newGuard()
		called := false

		err := guard.Run(ctx, "k", func(ctx context.Context) error {
			return guard.Run(ctx, "k", func(context.Context) error {
				called = true
				return nil
			})
		})
		assert.True(t, errs.HasCategory(err, errs.ErrConcurrencyConflict))
		assert.False(t, called)
	})

	t.Run("release survives a cancelled request context", func(t *testing.T) {
		guard, locker := newGuard()
		cctx, cancel := context.WithCancel(ctx)

		err := guard.Run(cctx, "k", func(context.Context) error {
			cancel()
			return nil
		})
		require.NoError(t, err)

		locked, _ := locker.IsLocked(ctx, "k")
		assert.False(t, locked)
	})
}

func TestLockGuard_RunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("already-held keys are released when a later key is busy", func(t *testing.T) {
		guard, locker := newGuard()

		busy, err := locker.TryAcquire(ctx, "b", time.Minute)
		require.NoError(t, err)
		defer func() { _ = busy.Release(ctx) }()

		err = guard.RunAll(ctx, []string{"a", "b"}, func(context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.True(t, errs.Is(err, errs.ErrLockNotAcquired))

		locked, _ := locker.IsLocked(ctx, "a")
		assert.False(t, locked)
	})

	t.Run("all keys are held during fn", func(t *testing.T) {
		guard, locker := newGuard()

		err := guard.RunAll(ctx, []string{"payment:1", "balance:1"}, func(ctx context.Context) error {
			for _, k := range []string{"payment:1", "balance:1"} {
				locked, _ := locker.IsLocked(ctx, k)
				assert.True(t, locked, k)
			}
			return nil
		})
		require.NoError(t, err)
	})
}
