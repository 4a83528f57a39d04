package cache

import (
	"context"
	"fmt"

	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/auth"
	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory creates the Redis-backed stores, falling back to in-memory ones
// when Redis is disabled or unreachable.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Connect opens the Redis connection when Redis is enabled
func (f *Factory) Connect(ctx context.Context) error {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory stores")
		return nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.client = client
		f.logger.Info("Connected to Redis", zap.String("addr", f.redisConfig.Addr()))
		return nil
	}

	if !f.allowInMemoryFallback {
		return fmt.Errorf("Redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Sessions will not be shared between instances.",
		zap.Error(err),
	)
	return nil
}

// Client returns the Redis client, or nil when running in memory
func (f *Factory) Client() *redis.Client {
	return f.client
}

// SessionStore returns the session store
func (f *Factory) SessionStore() identity.SessionStore {
	if f.client != nil {
		return auth.NewRedisSessionStore(f.client)
	}
	return auth.NewInMemorySessionStore()
}

// NameCache returns the shared lookup cache
func (f *Factory) NameCache() shared.NameCache {
	if f.client != nil {
		return NewRedisNameCache(f.client)
	}
	return NewInMemoryNameCache()
}

// Close closes the Redis connection
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
