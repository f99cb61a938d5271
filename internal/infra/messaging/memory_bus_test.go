//go:build unit

package messaging_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"commerce-server/internal/infra/messaging"
	"commerce-server/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	topics []string
	err    error

	mu   sync.Mutex
	seen []string
}

func (r *recordingSubscriber) Topics() []string { return r.topics }

func (r *recordingSubscriber) Handle(_ context.Context, event shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, event.Type)
	return r.err
}

func (r *recordingSubscriber) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func newEvent(t *testing.T, topic string) shared.Event {
	t.Helper()
	e, err := shared.NewEvent(topic, "1", shared.OrderPayload{OrderID: 1}, time.Now())
	require.NoError(t, err)
	return e
}

func TestMemoryBus(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("delivers only the subscribed topics", func(t *testing.T) {
		orders := &recordingSubscriber{topics: []string{shared.TopicOrderCompleted}}
		coupons := &recordingSubscriber{topics: []string{shared.TopicCouponIssued}}
		bus := messaging.NewMemoryBus([]messaging.Subscriber{orders, coupons}, nil, logger)

		require.NoError(t, bus.Publish(ctx, shared.TopicOrderCompleted, newEvent(t, shared.TopicOrderCompleted)))
		require.NoError(t, bus.Publish(ctx, shared.TopicBalanceCharged, newEvent(t, shared.TopicBalanceCharged)))

		assert.Equal(t, []string{shared.TopicOrderCompleted}, orders.received())
		assert.Empty(t, coupons.received())
	})

	t.Run("a failing subscriber does not stop the others", func(t *testing.T) {
		boom := errors.New("boom")
		failing := &recordingSubscriber{topics: []string{shared.TopicOrderCreated}, err: boom}
		healthy := &recordingSubscriber{topics: []string{shared.TopicOrderCreated}}
		bus := messaging.NewMemoryBus([]messaging.Subscriber{failing, healthy}, nil, logger)

		err := bus.Publish(ctx, shared.TopicOrderCreated, newEvent(t, shared.TopicOrderCreated))
		assert.ErrorIs(t, err, boom)
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("async delivery outlives a cancelled request context", func(t *testing.T) {
		sub := &recordingSubscriber{topics: []string{shared.TopicOrderCompleted}}
		bus := messaging.NewMemoryBus([]messaging.Subscriber{sub}, nil, logger)

		reqCtx, cancel := context.WithCancel(ctx)
		bus.PublishAsync(reqCtx, shared.TopicOrderCompleted, newEvent(t, shared.TopicOrderCompleted))
		cancel()
		bus.Wait()

		assert.Len(t, sub.received(), 1)
	})
}
