package bootstrap

import (
	"context"
	"log/slog"

	"commerce-server/internal/pkg/config"
	"commerce-server/internal/usecase/warmup"

	"go.uber.org/fx"
)

var WarmupModule = fx.Module("warmup",
	fx.Provide(
		warmup.Default,
		warmup.NewJob,
	),
	fx.Invoke(RegisterWarmup),
)

// RegisterWarmup runs the cache warmup once the store and cache are up.
func RegisterWarmup(lc fx.Lifecycle, job *warmup.Job, cfg config.WarmupConfig, logger *slog.Logger) {
	if !cfg.Enabled {
		logger.Info("cache warmup disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := job.Run(ctx); err != nil {
				logger.Error("cache warmup failed", slog.String("error", err.Error()))
				if cfg.FailFast {
					return err
				}
			}
			return nil
		},
	})
}
