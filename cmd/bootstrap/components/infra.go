package components

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/infra/cache"
	"commerce-server/internal/infra/lock"
	"commerce-server/internal/infra/messaging"
	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/usecase/events"
	"commerce-server/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		clock.NewRealClock,
		NewLocker,
		NewCache,
		shared.NewLockGuard,
		NewCacheAside,
		fx.Annotate(
			events.NewCacheInvalidator,
			fx.As(new(messaging.Subscriber)),
			fx.ResultTags(`group:"subscribers"`),
		),
	),
)

func NewLocker(lc fx.Lifecycle, cfg config.LockConfig, client *redis.Client, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) shared.Locker {
	if cfg.Backend == "memory" {
		mem := lock.NewMemoryLocker(clk, m, logger)
		runSweeper(lc, cfg.HoldTimeout, mem.SweepEvery)
		return mem
	}
	return lock.NewRedisLocker(client, m, logger)
}

func NewCache(lc fx.Lifecycle, cfg config.CacheConfig, client *redis.Client, clk clock.Clock, m *metrics.Metrics) shared.Cache {
	if cfg.Backend == "memory" {
		mem := cache.NewMemoryCache(clk, m)
		runSweeper(lc, cfg.SweepInterval, mem.SweepEvery)
		return mem
	}
	return cache.NewRedisCache(client, cfg, m)
}

func NewCacheAside(cfg config.CacheConfig, c shared.Cache, logger *slog.Logger) *shared.CacheAside {
	return shared.NewCacheAside(c, logger).WithLoadTimeout(cfg.LoadTimeout)
}

func runSweeper(lc fx.Lifecycle, interval time.Duration, sweep func(time.Duration, <-chan struct{})) {
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sweep(interval, stop)
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			return nil
		},
	})
}
