package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/pkg/config"
	"commerce-server/internal/usecase/commands"

	"go.uber.org/fx"
)

var ExpiryModule = fx.Module("expiry",
	fx.Provide(commands.NewCouponExpirer),
	fx.Invoke(RegisterCouponExpiry),
)

// RegisterCouponExpiry runs the expirer on a ticker for the life of the app.
func RegisterCouponExpiry(lc fx.Lifecycle, expirer *commands.CouponExpirer, cfg config.CouponExpiryConfig, logger *slog.Logger) {
	if !cfg.Enabled {
		logger.Info("coupon expiry disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				runEvery(ctx, cfg.Interval, func(ctx context.Context) {
					if _, err := expirer.Run(ctx); err != nil {
						logger.Error("coupon expiry failed", slog.String("error", err.Error()))
					}
				})
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// runEvery calls fn once per interval until ctx ends.
func runEvery(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
