package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"

	"github.com/google/uuid"
)

// MemoryLocker serializes callers within a single process.
type MemoryLocker struct {
	mu      sync.Mutex
	held    map[string]lease
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type lease struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLocker(clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *MemoryLocker {
	return &MemoryLocker{
		held:    make(map[string]lease),
		clock:   clk,
		metrics: m,
		logger:  logger,
	}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key string, holdFor time.Duration) (shared.Lock, error) {
	if holdFor <= 0 {
		return nil, shared.ErrInvalidHoldTimeout
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expiresAt) {
		l.metrics.LockAcquire(metrics.LockConflict)
		return nil, errs.Wrapf(errs.ErrLockNotAcquired, "lock %s", key)
	}

	token := uuid.NewString()
	l.held[key] = lease{token: token, expiresAt: now.Add(holdFor)}
	l.metrics.LockAcquire(metrics.LockAcquired)
	return &memoryLock{locker: l, key: key, token: token}, nil
}

func (l *MemoryLocker) IsLocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.held[key]
	if ok && !l.clock.Now().Before(cur.expiresAt) {
		delete(l.held, key)
		return false, nil
	}
	return ok, nil
}

// Sweep forgets leases that expired without being released.
func (l *MemoryLocker) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0
	for key, cur := range l.held {
		if !now.Before(cur.expiresAt) {
			delete(l.held, key)
			removed++
		}
	}
	return removed
}

// SweepEvery runs Sweep on a ticker until stop is closed.
func (l *MemoryLocker) SweepEvery(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Len reports the number of tracked leases, expired ones included.
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

func (l *MemoryLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.held[key]
	if !ok || cur.token != token {
		l.metrics.LockRelease(metrics.LockLost)
		l.logger.Warn("lock expired before release", slog.String("key", key))
		return
	}
	delete(l.held, key)
	l.metrics.LockRelease(metrics.LockReleased)
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (m *memoryLock) Key() string { return m.key }

func (m *memoryLock) Release(context.Context) error {
	m.locker.release(m.key, m.token)
	return nil
}
