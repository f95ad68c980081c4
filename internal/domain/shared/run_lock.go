package shared

import (
	"context"
	"time"
)

// RunLock serializes sync passes. Only one holder may run at a time,
// across every routine that shares a checkpoint.
type RunLock interface {
	// TryAcquire takes the lock without blocking.
	// Returns false if another holder owns it.
	TryAcquire(ctx context.Context) (bool, error)

	// Release gives the lock back. Releasing a lock that is not held is a no-op.
	Release(ctx context.Context) error

	// Close closes the lock and releases resources
	Close() error
}

// RunLockConfig holds configuration for the run lock
type RunLockConfig struct {
	// TTL bounds how long a crashed holder can keep the lock
	// Default: 30 minutes
	TTL time.Duration

	// Key is the lock name in shared backends
	// Default: "sync:run-lock"
	Key string
}

// DefaultRunLockConfig returns the default run lock configuration
func DefaultRunLockConfig() RunLockConfig {
	return RunLockConfig{
		TTL: 30 * time.Minute,
		Key: "sync:run-lock",
	}
}
