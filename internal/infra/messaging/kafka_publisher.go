package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

const (
	headerEventType = "event-type"
	asyncTimeout    = 5 * time.Second
)

type KafkaPublisher struct {
	writer  *kafka.Writer
	cfg     config.KafkaConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewKafkaWriter builds a writer without a fixed topic; each message names its own.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer *kafka.Writer, cfg config.KafkaConfig, m *metrics.Metrics, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, cfg: cfg, metrics: m, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event shared.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errs.Wrapf(err, "encode event %s", event.ID)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.cfg.Topic(topic),
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	})
	p.metrics.EventPublished(topic, err)
	if err != nil {
		return errs.Wrapf(err, "publish %s", topic)
	}
	return nil
}

func (p *KafkaPublisher) PublishAsync(ctx context.Context, topic string, event shared.Event) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncTimeout)
		defer cancel()
		if err := p.Publish(sendCtx, topic, event); err != nil {
			p.logger.Error("failed to publish event",
				slog.String("topic", topic),
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
		}
	}()
}

// Close waits for in-flight async sends and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.wg.Wait()
	return p.writer.Close()
}
