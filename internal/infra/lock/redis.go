// Package lock provides shared.Locker implementations.
package lock

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// releaseScript deletes the key only while it still carries the caller's token,
// so a holder whose lease expired cannot free someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewRedisLocker(client redis.UniversalClient, m *metrics.Metrics, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{client: client, metrics: m, logger: logger}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, holdFor time.Duration) (shared.Lock, error) {
	if holdFor <= 0 {
		return nil, shared.ErrInvalidHoldTimeout
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, holdFor).Result()
	if err != nil {
		l.metrics.LockAcquire(metrics.LockError)
		return nil, errs.Wrapf(err, "acquire lock %s", key)
	}
	if !ok {
		l.metrics.LockAcquire(metrics.LockConflict)
		return nil, errs.Wrapf(errs.ErrLockNotAcquired, "lock %s", key)
	}

	l.metrics.LockAcquire(metrics.LockAcquired)
	return &redisLock{locker: l, key: key, token: token}, nil
}

func (l *RedisLocker) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, errs.Wrapf(err, "check lock %s", key)
	}
	return n > 0, nil
}

type redisLock struct {
	locker *RedisLocker
	key    string
	token  string
}

func (r *redisLock) Key() string { return r.key }

func (r *redisLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, r.locker.client, []string{keyPrefix + r.key}, r.token).Int()
	if err != nil {
		r.locker.metrics.LockRelease(metrics.LockError)
		return errs.Wrapf(err, "release lock %s", r.key)
	}
	if n == 0 {
		r.locker.metrics.LockRelease(metrics.LockLost)
		r.locker.logger.Warn("lock expired before release", slog.String("key", r.key))
		return nil
	}
	r.locker.metrics.LockRelease(metrics.LockReleased)
	return nil
}
