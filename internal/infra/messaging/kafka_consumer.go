package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

const (
	fetchRetryDelay = time.Second
	maxRetryDelay   = 10 * time.Second
)

// KafkaConsumer feeds events from the subscribed topics to their subscribers.
// Messages are handled one at a time and committed in order, so a message is
// committed only once every handler has succeeded or exhausted its retries.
type KafkaConsumer struct {
	reader   *kafka.Reader
	handlers map[string][]Subscriber
	metrics  *metrics.Metrics
	logger   *slog.Logger
	retries  uint64
	backoff  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewKafkaConsumer(cfg config.KafkaConfig, subscribers []Subscriber, m *metrics.Metrics, logger *slog.Logger) *KafkaConsumer {
	handlers := make(map[string][]Subscriber)
	var topics []string
	for _, s := range subscribers {
		for _, t := range s.Topics() {
			full := cfg.Topic(t)
			if _, seen := handlers[full]; !seen {
				topics = append(topics, full)
			}
			handlers[full] = append(handlers[full], s)
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})

	return &KafkaConsumer{
		reader:   reader,
		handlers: handlers,
		metrics:  m,
		logger:   logger,
		retries:  cfg.HandlerRetries,
		backoff:  cfg.HandlerBackoff,
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Info("kafka consumer started", slog.Int("topics", len(c.handlers)))
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
				select {
				case <-ctx.Done():
					return
				case <-time.After(fetchRetryDelay):
				}
				continue
			}

			if !c.process(ctx, msg) {
				// shutting down mid-retry; the uncommitted offset is redelivered on restart
				return
			}
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("failed to commit message", slog.String("topic", msg.Topic), slog.String("error", err.Error()))
			}
		}
	}()
}

func (c *KafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return c.reader.Close()
}

// process reports whether msg may be committed. It is false only when ctx
// ended before every handler was done with the message.
func (c *KafkaConsumer) process(ctx context.Context, msg kafka.Message) bool {
	var event shared.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("skipping malformed message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()))
		return true
	}

	for _, h := range c.handlers[msg.Topic] {
		err := c.deliver(ctx, h, event)
		if ctx.Err() != nil {
			return false
		}
		if err != nil {
			c.logger.Error("giving up on event after retries",
				slog.String("event_id", event.ID),
				slog.String("type", event.Type),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
		}
	}
	return true
}

func (c *KafkaConsumer) deliver(ctx context.Context, h Subscriber, event shared.Event) error {
	attempt := 0
	op := func() error {
		attempt++
		err := h.Handle(ctx, event)
		c.metrics.EventConsumed(event.Type, err)
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("event handler failed, retrying",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}
	return backoff.RetryNotify(op, c.retryPolicy(ctx), notify)
}

func (c *KafkaConsumer) retryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	if c.backoff > 0 {
		b.InitialInterval = c.backoff
	}
	b.MaxInterval = maxRetryDelay
	// the retry count bounds the loop, not elapsed time
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx)
}
