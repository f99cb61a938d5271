package bootstrap

import (
	"context"
	"log/slog"

	"commerce-server/internal/infra/messaging"
	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/usecase/shared"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewPublisher,
	),
)

type publisherParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Config      config.KafkaConfig
	Subscribers []messaging.Subscriber `group:"subscribers"`
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewPublisher wires Kafka when enabled, with a consumer feeding the
// subscribers; otherwise events go straight to the subscribers in process.
func NewPublisher(p publisherParams) shared.Publisher {
	if !p.Config.Enabled {
		p.Logger.Info("kafka disabled, using in-process event bus")
		return messaging.NewMemoryBus(p.Subscribers, p.Metrics, p.Logger)
	}

	publisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(p.Config), p.Config, p.Metrics, p.Logger)
	consumer := messaging.NewKafkaConsumer(p.Config, p.Subscribers, p.Metrics, p.Logger)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// the start context ends with OnStart; the consumer lives until OnStop
			consumer.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			if err := consumer.Stop(); err != nil {
				p.Logger.Warn("failed to close kafka consumer", slog.String("error", err.Error()))
			}
			return publisher.Close()
		},
	})

	return publisher
}
