package cache

import (
	"fmt"

	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends are the coordination stores shared by the process
type Backends struct {
	// Client is nil when running without Redis
	Client    *redis.Client
	Dedup     shared.IdempotencyStore
	JobLocker JobLocker
}

// Close releases the stores and the Redis client
func (b *Backends) Close() error {
	if b.Dedup != nil {
		_ = b.Dedup.Close()
	}
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// Factory builds Backends from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	dial                  func(config.RedisConfig) (*redis.Client, error)
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		dial:                  NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create connects to Redis when configured, otherwise (or when Redis is
// unreachable and fallback is allowed) returns in-memory stores.
func (f *Factory) Create() (*Backends, error) {
	if !f.redisConfig.Enabled() {
		f.logger.Info("Redis not configured, using in-memory dedup store and job locks")
		return InMemoryBackends(), nil
	}

	client, err := f.dial(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Delay alerts may be duplicated across instances.",
			zap.Error(err))
		return InMemoryBackends(), nil
	}

	f.logger.Info("Using Redis for dedup store and job locks", zap.String("addr", f.redisConfig.Addr()))
	return &Backends{
		Client:    client,
		Dedup:     NewRedisIdempotencyStore(client, defaultDedupPrefix),
		JobLocker: NewRedisJobLocker(client),
	}, nil
}

// InMemoryBackends returns process-local stores
func InMemoryBackends() *Backends {
	return &Backends{
		Dedup:     NewInMemoryIdempotencyStore(),
		JobLocker: NewInMemoryJobLocker(),
	}
}
