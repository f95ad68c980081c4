package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/shared"
)

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisRunLock implements RunLock with SET NX and a TTL, so sync processes
// on different hosts sharing one checkpoint never run concurrently.
// Each instance writes its own owner token and only deletes a key it owns.
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string

	mu   sync.Mutex
	held bool
}

// NewRedisRunLock connects to Redis and creates a run lock
func NewRedisRunLock(cfg RedisConfig, lockCfg shared.RunLockConfig) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRunLockWithClient(client, lockCfg), nil
}

// NewRedisRunLockWithClient creates a run lock with an existing Redis client
func NewRedisRunLockWithClient(client *redis.Client, lockCfg shared.RunLockConfig) *RedisRunLock {
	defaults := shared.DefaultRunLockConfig()
	if lockCfg.Key == "" {
		lockCfg.Key = defaults.Key
	}
	if lockCfg.TTL <= 0 {
		lockCfg.TTL = defaults.TTL
	}
	return &RedisRunLock{
		client: client,
		key:    lockCfg.Key,
		ttl:    lockCfg.TTL,
		token:  uuid.NewString(),
	}
}

// TryAcquire sets the lock key if it does not exist
func (l *RedisRunLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	if ok {
		l.mu.Lock()
		l.held = true
		l.mu.Unlock()
	}
	return ok, nil
}

// Release deletes the lock key when this instance owns it
func (l *RedisRunLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	l.held = false
	return nil
}

// Close closes the Redis client
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}

// Key returns the lock key (for testing/monitoring)
func (l *RedisRunLock) Key() string {
	return l.key
}

// Ensure RedisRunLock implements RunLock
var _ shared.RunLock = (*RedisRunLock)(nil)
