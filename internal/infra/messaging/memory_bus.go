package messaging

import (
	"context"
	"log/slog"
	"sync"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/usecase/shared"
)

// MemoryBus delivers events to in-process subscribers. It is used when Kafka
// is disabled so event-driven cache invalidation still runs.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Subscriber
	metrics  *metrics.Metrics
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewMemoryBus(subscribers []Subscriber, m *metrics.Metrics, logger *slog.Logger) *MemoryBus {
	b := &MemoryBus{handlers: make(map[string][]Subscriber), metrics: m, logger: logger}
	for _, s := range subscribers {
		b.Subscribe(s)
	}
	return b
}

func (b *MemoryBus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range s.Topics() {
		b.handlers[t] = append(b.handlers[t], s)
	}
}

// Publish runs every subscriber of topic synchronously and returns the first
// handler error.
func (b *MemoryBus) Publish(ctx context.Context, topic string, event shared.Event) error {
	b.mu.RLock()
	subs := b.handlers[topic]
	b.mu.RUnlock()

	var first error
	for _, s := range subs {
		err := s.Handle(ctx, event)
		b.metrics.EventConsumed(topic, err)
		if err != nil && first == nil {
			first = err
		}
	}
	b.metrics.EventPublished(topic, first)
	return first
}

func (b *MemoryBus) PublishAsync(ctx context.Context, topic string, event shared.Event) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
			b.logger.Error("event handler failed",
				slog.String("topic", topic),
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until all async deliveries have finished.
func (b *MemoryBus) Wait() {
	b.wg.Wait()
}
