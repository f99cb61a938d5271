// Package events reacts to domain events published by the commands.
package events

import (
	"context"
	"log/slog"

	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/shared"
)

// CacheInvalidator evicts derived views that a completed sale makes stale:
// every ranking and popularity window, and the sold products' details.
type CacheInvalidator struct {
	cache  *shared.CacheAside
	logger *slog.Logger
}

func NewCacheInvalidator(cache *shared.CacheAside, logger *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, logger: logger}
}

func (h *CacheInvalidator) Topics() []string {
	return []string{shared.TopicOrderCompleted}
}

func (h *CacheInvalidator) Handle(ctx context.Context, event shared.Event) error {
	if event.Type != shared.TopicOrderCompleted {
		return nil
	}

	var payload shared.OrderPayload
	if err := event.Decode(&payload); err != nil {
		// a malformed event will never decode; skip it instead of blocking the partition
		h.logger.Warn("skipping undecodable event", slog.String("event_id", event.ID), slog.String("error", err.Error()))
		return nil
	}

	for _, pattern := range []string{keygen.ProductRanking.Pattern(), keygen.ProductPopular.Pattern()} {
		n, err := h.cache.EvictByPattern(ctx, pattern)
		if err != nil {
			return err
		}
		h.logger.Debug("evicted cache family", slog.String("pattern", pattern), slog.Int("keys", n))
	}

	for _, id := range payload.ProductIDs {
		if err := h.cache.Evict(ctx, keygen.ProductKey(id)); err != nil {
			return err
		}
	}
	return nil
}
