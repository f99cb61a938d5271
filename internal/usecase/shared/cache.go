package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"commerce-server/internal/pkg/errs"

	"golang.org/x/sync/singleflight"
)

// Cache stores opaque values with a TTL. It is a derived view of the store and
// may lose entries at any time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPattern removes every key matching a glob pattern and returns how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// CacheAside layers JSON encoding, miss coalescing and error policy on top of
// a Cache. Reads degrade to the supplier when the cache fails; explicit writes
// report failures to the caller.
type CacheAside struct {
	cache       Cache
	group       singleflight.Group
	loadTimeout time.Duration
	logger      *slog.Logger
}

// DefaultLoadTimeout bounds a coalesced miss load.
const DefaultLoadTimeout = 10 * time.Second

func NewCacheAside(cache Cache, logger *slog.Logger) *CacheAside {
	return &CacheAside{cache: cache, loadTimeout: DefaultLoadTimeout, logger: logger}
}

// WithLoadTimeout replaces the bound on a coalesced miss load.
func (c *CacheAside) WithLoadTimeout(d time.Duration) *CacheAside {
	if d > 0 {
		c.loadTimeout = d
	}
	return c
}

// GetOrCompute returns the cached value for key, or computes it with supplier
// and caches it for ttl. Supplier errors are returned and nothing is cached.
func GetOrCompute[T any](ctx context.Context, c *CacheAside, key string, ttl time.Duration, supplier func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	// The shared load outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		val, err := supplier(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store(loadCtx, key, val, ttl)
		return val, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// GetListOrCompute is GetOrCompute for sequences. A nil result is returned and
// cached as an empty list.
func GetListOrCompute[T any](ctx context.Context, c *CacheAside, key string, ttl time.Duration, supplier func(ctx context.Context) ([]T, error)) ([]T, error) {
	list, err := GetOrCompute(ctx, c, key, ttl, func(ctx context.Context) ([]T, error) {
		items, err := supplier(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func (c *CacheAside) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errs.Wrapf(err, "encode cache value %s", key)
	}
	if err := c.cache.Set(ctx, key, data, ttl); err != nil {
		return errs.Wrapf(err, "put cache %s", key)
	}
	return nil
}

func (c *CacheAside) Evict(ctx context.Context, key string) error {
	if err := c.cache.Delete(ctx, key); err != nil {
		return errs.Wrapf(err, "evict cache %s", key)
	}
	return nil
}

func (c *CacheAside) EvictByPattern(ctx context.Context, pattern string) (int, error) {
	n, err := c.cache.DeleteByPattern(ctx, pattern)
	if err != nil {
		return n, errs.Wrapf(err, "evict cache pattern %s", pattern)
	}
	return n, nil
}

// Invalidate evicts keys and patterns after a committed write. Failures are
// logged; the entries then expire by TTL.
func (c *CacheAside) Invalidate(ctx context.Context, keys []string, patterns ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := c.Evict(ctx, key); err != nil {
			c.logger.Warn("cache eviction failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	for _, pattern := range patterns {
		if _, err := c.EvictByPattern(ctx, pattern); err != nil {
			c.logger.Warn("cache pattern eviction failed", slog.String("pattern", pattern), slog.String("error", err.Error()))
		}
	}
}

// Refresh writes a value after a committed write, logging failures.
func (c *CacheAside) Refresh(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := c.Put(context.WithoutCancel(ctx), key, value, ttl); err != nil {
		c.logger.Warn("cache refresh failed, evicting", slog.String("key", key), slog.String("error", err.Error()))
		c.Invalidate(ctx, []string{key})
	}
}

func (c *CacheAside) lookup(ctx context.Context, key string, target any) bool {
	data, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, falling back to store", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		c.logger.Warn("cache entry undecodable, recomputing", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (c *CacheAside) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := c.Put(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
