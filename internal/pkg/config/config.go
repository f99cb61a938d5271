package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Lock   LockConfig
	Cache  CacheConfig
	Store  StoreConfig
	Warmup WarmupConfig
	Expiry CouponExpiryConfig
	CORS   CORSConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"commerce"`
	Password string `envconfig:"DB_PASSWORD" default:"commerce"`
	DBName   string `envconfig:"DB_NAME" default:"commerce"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"20"`
}

type KafkaConfig struct {
	Enabled       bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers       []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	TopicPrefix   string   `envconfig:"KAFKA_TOPIC_PREFIX" default:"commerce."`
	ConsumerGroup string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"commerce-cache-invalidator"`
	// A failing handler is retried with exponential backoff starting at
	// HandlerBackoff, HandlerRetries times, before the message is given up.
	HandlerRetries uint64        `envconfig:"KAFKA_HANDLER_RETRIES" default:"5"`
	HandlerBackoff time.Duration `envconfig:"KAFKA_HANDLER_BACKOFF" default:"200ms"`
}

// Backend values: "redis" or "memory". The memory backends only serialize
// within one process and are meant for local runs and tests.
type LockConfig struct {
	Backend     string        `envconfig:"LOCK_BACKEND" default:"redis"`
	HoldTimeout time.Duration `envconfig:"LOCK_HOLD_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	Backend   string  `envconfig:"CACHE_BACKEND" default:"redis"`
	TTLJitter float64 `envconfig:"CACHE_TTL_JITTER" default:"0.1"`
	// LoadTimeout bounds a miss load shared by concurrent readers.
	LoadTimeout time.Duration `envconfig:"CACHE_LOAD_TIMEOUT" default:"10s"`
	// SweepInterval is how often the memory backend drops expired entries.
	SweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"1m"`
}

// Backend values: "postgres" or "memory".
type StoreConfig struct {
	Backend string `envconfig:"STORE_BACKEND" default:"postgres"`
}

type WarmupConfig struct {
	Enabled       bool          `envconfig:"WARMUP_ENABLED" default:"true"`
	FailFast      bool          `envconfig:"WARMUP_FAIL_FAST" default:"false"`
	Concurrency   int           `envconfig:"WARMUP_CONCURRENCY" default:"8"`
	SlowThreshold time.Duration `envconfig:"WARMUP_SLOW_THRESHOLD" default:"5s"`
}

type CouponExpiryConfig struct {
	Enabled  bool          `envconfig:"COUPON_EXPIRY_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"COUPON_EXPIRY_INTERVAL" default:"1h"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,X-User-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// Topic returns the fully qualified topic name for an event type.
func (c KafkaConfig) Topic(name string) string {
	return c.TopicPrefix + name
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Lock.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported LOCK_BACKEND %q", c.Lock.Backend)
	}
	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Lock.HoldTimeout <= 0 {
		return fmt.Errorf("LOCK_HOLD_TIMEOUT must be positive, got %s", c.Lock.HoldTimeout)
	}
	if c.Expiry.Enabled && c.Expiry.Interval <= 0 {
		return fmt.Errorf("COUPON_EXPIRY_INTERVAL must be positive, got %s", c.Expiry.Interval)
	}
	if c.Cache.TTLJitter < 0 || c.Cache.TTLJitter >= 1 {
		return fmt.Errorf("CACHE_TTL_JITTER must be in [0, 1), got %v", c.Cache.TTLJitter)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 10,
		},
		Redis: RedisConfig{
			Addr:     "localhost:16379",
			PoolSize: 10,
		},
		Kafka: KafkaConfig{
			Enabled:        false,
			TopicPrefix:    "test.",
			ConsumerGroup:  "test-group",
			HandlerRetries: 2,
			HandlerBackoff: 10 * time.Millisecond,
		},
		Lock: LockConfig{
			Backend:     "memory",
			HoldTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			LoadTimeout:   5 * time.Second,
			SweepInterval: time.Minute,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Warmup: WarmupConfig{
			Enabled:       true,
			FailFast:      true,
			Concurrency:   4,
			SlowThreshold: 5 * time.Second,
		},
		Expiry: CouponExpiryConfig{
			Enabled:  false,
			Interval: time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
	}
}
