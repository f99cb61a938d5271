package shared

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/pkg/config"
	"commerce-server/internal/pkg/errs"
)

var ErrInvalidHoldTimeout = errs.New("lock hold timeout must be positive")

// Lock is a held critical section. Release only frees the key while the
// caller still owns it; after the hold timeout another caller may own it.
type Lock interface {
	Key() string
	Release(ctx context.Context) error
}

// Locker hands out named, exclusive, non-reentrant locks.
//
// TryAcquire never waits: when the key is held it returns errs.ErrLockNotAcquired,
// which is in the errs.ErrConcurrencyConflict category. holdFor bounds how long the lock survives
// a holder that never releases it. IsLocked is a point-in-time diagnostic and
// must not be used to decide whether to proceed.
type Locker interface {
	TryAcquire(ctx context.Context, key string, holdFor time.Duration) (Lock, error)
	IsLocked(ctx context.Context, key string) (bool, error)
}

// LockGuard runs functions inside locks with the configured hold timeout and
// releases them on every exit path.
type LockGuard struct {
	locker  Locker
	holdFor time.Duration
	logger  *slog.Logger
}

func NewLockGuard(locker Locker, cfg config.LockConfig, logger *slog.Logger) *LockGuard {
	return &LockGuard{locker: locker, holdFor: cfg.HoldTimeout, logger: logger}
}

func (g *LockGuard) HoldTimeout() time.Duration { return g.holdFor }

func (g *LockGuard) Run(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return g.RunAll(ctx, []string{key}, fn)
}

// RunAll acquires keys in the given order and releases them in reverse. If a
// later key is busy, the ones already held are released before returning.
func (g *LockGuard) RunAll(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	held := make([]Lock, 0, len(keys))
	defer func() {
		// release must not be skipped because the request was cancelled
		releaseCtx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(releaseCtx); err != nil {
				g.logger.Error("failed to release lock",
					slog.String("key", held[i].Key()),
					slog.String("error", err.Error()))
			}
		}
	}()

	for _, key := range keys {
		lock, err := g.locker.TryAcquire(ctx, key, g.holdFor)
		if err != nil {
			if errs.HasCategory(err, errs.ErrConcurrencyConflict) {
				g.logger.Info("lock busy", slog.String("key", key))
			}
			return err
		}
		held = append(held, lock)
	}

	return fn(ctx)
}
