package cache

import (
	"context"
	"sync"
	"time"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/keygen"
)

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   clock.Clock
	metrics *metrics.Metrics
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache(clk clock.Clock, m *metrics.Metrics) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		clock:   clk,
		metrics: m,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.metrics.CacheLookup(metrics.CacheMiss)
		return nil, false, nil
	}
	if now := c.clock.Now(); !now.Before(e.expiresAt) {
		c.mu.Lock()
		// a concurrent Set may have replaced the entry since the read
		if cur, ok := c.entries[key]; ok && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.metrics.CacheLookup(metrics.CacheMiss)
		return nil, false, nil
	}
	c.metrics.CacheLookup(metrics.CacheHit)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errInvalidTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: stored, expiresAt: c.clock.Now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.metrics.CacheEvicted(1)
	}
	return nil
}

func (c *MemoryCache) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if keygen.Matches(pattern, key) {
			delete(c.entries, key)
			removed++
		}
	}
	c.metrics.CacheEvicted(removed)
	return removed, nil
}

// Sweep drops every expired entry and returns how many it dropped.
func (c *MemoryCache) Sweep() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// SweepEvery runs Sweep on a ticker until stop is closed.
func (c *MemoryCache) SweepEvery(interval time.Duration, stop <-chan struct{}) {
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
			c.Sweep()
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
