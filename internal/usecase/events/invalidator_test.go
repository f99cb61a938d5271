//go:build unit

package events_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"commerce-server/internal/infra/cache"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/events"
	"commerce-server/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheInvalidator(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*events.CacheInvalidator, *cache.MemoryCache) {
		t.Helper()
		mem := cache.NewMemoryCache(clock.NewMockClock(now), nil)
		for _, key := range []string{
			keygen.DailyRankingKey(now),
			keygen.WeeklyRankingKey(now),
			keygen.PopularKey(3, 5),
			keygen.ProductKey(1),
			keygen.ProductKey(2),
			keygen.BalanceKey(1),
		} {
			require.NoError(t, mem.Set(ctx, key, []byte(`{}`), time.Hour))
		}
		return events.NewCacheInvalidator(shared.NewCacheAside(mem, slog.New(slog.DiscardHandler)), slog.New(slog.DiscardHandler)), mem
	}

	present := func(t *testing.T, mem *cache.MemoryCache, key string) bool {
		t.Helper()
		_, found, err := mem.Get(ctx, key)
		require.NoError(t, err)
		return found
	}

	t.Run("completed order evicts rankings, popular and sold products", func(t *testing.T) {
		h, mem := setup(t)
		event, err := shared.NewEvent(shared.TopicOrderCompleted, "1", shared.OrderPayload{OrderID: 1, ProductIDs: []int64{1}}, now)
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, event))

		assert.False(t, present(t, mem, keygen.DailyRankingKey(now)))
		assert.False(t, present(t, mem, keygen.WeeklyRankingKey(now)))
		assert.False(t, present(t, mem, keygen.PopularKey(3, 5)))
		assert.False(t, present(t, mem, keygen.ProductKey(1)))
		assert.True(t, present(t, mem, keygen.ProductKey(2)))
		assert.True(t, present(t, mem, keygen.BalanceKey(1)))
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		h, mem := setup(t)
		event, err := shared.NewEvent(shared.TopicOrderCreated, "1", shared.OrderPayload{OrderID: 1}, now)
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, event))
		assert.True(t, present(t, mem, keygen.DailyRankingKey(now)))
	})

	t.Run("undecodable payload is skipped", func(t *testing.T) {
		h, mem := setup(t)
		event := shared.Event{ID: "x", Type: shared.TopicOrderCompleted, Payload: []byte(`not json`)}

		require.NoError(t, h.Handle(ctx, event))
		assert.True(t, present(t, mem, keygen.PopularKey(3, 5)))
	})
}
