// Package cache provides shared.Cache implementations.
package cache

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "cache:"
	scanBatch = 500
)

var errInvalidTTL = errs.New("cache ttl must be positive")

type RedisCache struct {
	client  redis.UniversalClient
	jitter  float64
	metrics *metrics.Metrics
}

func NewRedisCache(client redis.UniversalClient, cfg config.CacheConfig, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, jitter: cfg.TTLJitter, metrics: m}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheLookup(metrics.CacheMiss)
		return nil, false, nil
	}
	if err != nil {
		c.metrics.CacheLookup(metrics.CacheError)
		return nil, false, errs.Wrapf(err, "cache get %s", key)
	}
	c.metrics.CacheLookup(metrics.CacheHit)
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errInvalidTTL
	}
	if err := c.client.Set(ctx, keyPrefix+key, value, jittered(ttl, c.jitter)).Err(); err != nil {
		return errs.Wrapf(err, "cache set %s", key)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	n, err := c.client.Del(ctx, keyPrefix+key).Result()
	if err != nil {
		return errs.Wrapf(err, "cache delete %s", key)
	}
	c.metrics.CacheEvicted(int(n))
	return nil
}

// DeleteByPattern walks the keyspace with SCAN and deletes matches in batches.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	iter := c.client.Scan(ctx, 0, keyPrefix+pattern, scanBatch).Iterator()

	removed := 0
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return removed, errs.Wrapf(err, "cache delete pattern %s", pattern)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, errs.Wrapf(err, "cache scan pattern %s", pattern)
	}
	if err := flush(); err != nil {
		return removed, errs.Wrapf(err, "cache delete pattern %s", pattern)
	}

	c.metrics.CacheEvicted(removed)
	return removed, nil
}

// jittered spreads expiry by up to ±fraction of ttl so keys written together
// do not expire together.
func jittered(ttl time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return ttl
	}
	delta := (rand.Float64()*2 - 1) * fraction * float64(ttl)
	out := ttl + time.Duration(delta)
	if out < time.Millisecond {
		return time.Millisecond
	}
	return out
}
