package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/shared"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/config"
)

// RunLockFactory creates run locks based on configuration
type RunLockFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RunLockFactoryOption is a functional option for configuring the factory
type RunLockFactoryOption func(*RunLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RunLockFactoryOption {
	return func(f *RunLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lock when Redis is unavailable.
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) RunLockFactoryOption {
	return func(f *RunLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRunLockFactory creates a new factory
func NewRunLockFactory(cfg config.RedisConfig, opts ...RunLockFactoryOption) *RunLockFactory {
	f := &RunLockFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *RunLockFactory) lockConfig() shared.RunLockConfig {
	return shared.RunLockConfig{TTL: f.redisConfig.LockTTL, Key: f.redisConfig.LockKey}
}

// CreateRedisLock creates a Redis-backed run lock
func (f *RunLockFactory) CreateRedisLock() (shared.RunLock, error) {
	lock, err := NewRedisRunLock(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.lockConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis run lock: %w", err)
	}
	return lock, nil
}

// CreateInMemoryLock creates a process-local run lock.
// WARNING: two processes sharing one checkpoint are not serialised by it.
func (f *RunLockFactory) CreateInMemoryLock() shared.RunLock {
	return NewInMemoryRunLock(f.lockConfig())
}

// CreateLock returns the Redis lock when Redis is enabled and reachable.
// When Redis is enabled but unreachable it falls back to the in-memory lock
// if allowed.
func (f *RunLockFactory) CreateLock() (shared.RunLock, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory run lock")
		return f.CreateInMemoryLock(), nil
	}

	lock, err := f.CreateRedisLock()
	if err == nil {
		f.logger.Info("using Redis run lock", zap.String("key", f.redisConfig.LockKey))
		return lock, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for run lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory run lock. "+
		"Sync processes on other hosts will not be serialised.",
		zap.Error(err),
	)
	return f.CreateInMemoryLock(), nil
}
