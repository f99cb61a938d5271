package bootstrap

import (
	"commerce-server/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	configPartsOption,
)

// configPartsOption exposes config sections to constructors that take only their own section.
var configPartsOption = fx.Provide(
	func(cfg config.Config) config.LockConfig { return cfg.Lock },
	func(cfg config.Config) config.CacheConfig { return cfg.Cache },
	func(cfg config.Config) config.WarmupConfig { return cfg.Warmup },
	func(cfg config.Config) config.CouponExpiryConfig { return cfg.Expiry },
	func(cfg config.Config) config.KafkaConfig { return cfg.Kafka },
)

// ConfigPartsModule is for apps that supply config.Config themselves, such as tests.
var ConfigPartsModule = fx.Module("config/parts", configPartsOption)
