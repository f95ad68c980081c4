package cache

import (
	"context"
	"sync"
	"time"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/shared"
)

// InMemoryRunLock implements RunLock inside a single process.
// An acquisition expires after the TTL so a stuck run cannot block forever.
type InMemoryRunLock struct {
	mu        sync.Mutex
	ttl       time.Duration
	held      bool
	expiresAt time.Time
	now       func() time.Time
}

// NewInMemoryRunLock creates a process-local run lock
func NewInMemoryRunLock(cfg shared.RunLockConfig) *InMemoryRunLock {
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultRunLockConfig().TTL
	}
	return &InMemoryRunLock{
		ttl: cfg.TTL,
		now: time.Now,
	}
}

// TryAcquire takes the lock unless a live holder owns it
func (l *InMemoryRunLock) TryAcquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.held && now.Before(l.expiresAt) {
		return false, nil
	}
	l.held = true
	l.expiresAt = now.Add(l.ttl)
	return true, nil
}

// Release gives the lock back
func (l *InMemoryRunLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}

// Held reports whether a live holder owns the lock (for testing/monitoring)
func (l *InMemoryRunLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held && l.now().Before(l.expiresAt)
}

// Close releases resources. The in-memory lock holds none.
func (l *InMemoryRunLock) Close() error {
	return nil
}

// Ensure InMemoryRunLock implements RunLock
var _ shared.RunLock = (*InMemoryRunLock)(nil)
