// Package scheduler triggers sync routines on their configured intervals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/config"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/logger"
)

// SyncRunner runs one sync routine and reports its result
type SyncRunner interface {
	Run(ctx context.Context, syncType integration.SyncType) *integration.SyncResult
}

// ---------------------------------------------------------------------------
// SyncCronTriggerConfig
// ---------------------------------------------------------------------------

// SyncCronTriggerConfig holds configuration for the sync cron trigger
type SyncCronTriggerConfig struct {
	// CheckInterval is how often due routines are looked for
	CheckInterval time.Duration

	// Intervals is the minimum time between two runs of a routine.
	// Types with no interval are never scheduled.
	Intervals map[integration.SyncType]time.Duration

	// RunTimeout bounds a single routine run
	RunTimeout time.Duration
}

// DefaultSyncCronTriggerConfig returns default configuration
func DefaultSyncCronTriggerConfig() SyncCronTriggerConfig {
	return SyncCronTriggerConfig{
		CheckInterval: time.Minute,
		Intervals: map[integration.SyncType]time.Duration{
			integration.SyncTypeOffers:    60 * time.Minute,
			integration.SyncTypeInventory: 15 * time.Minute,
			integration.SyncTypeOrders:    10 * time.Minute,
			integration.SyncTypeTracking:  30 * time.Minute,
		},
		RunTimeout: 30 * time.Minute,
	}
}

// ConfigFromSchedule builds the trigger configuration from the schedule section
func ConfigFromSchedule(cfg config.ScheduleConfig) SyncCronTriggerConfig {
	return SyncCronTriggerConfig{
		CheckInterval: cfg.CheckInterval,
		Intervals: map[integration.SyncType]time.Duration{
			integration.SyncTypeOffers:    cfg.OffersInterval,
			integration.SyncTypeInventory: cfg.InventoryInterval,
			integration.SyncTypeOrders:    cfg.OrdersInterval,
			integration.SyncTypeTracking:  cfg.TrackingInterval,
		},
		RunTimeout: cfg.RunTimeout,
	}
}

// Validate checks the configuration
func (c SyncCronTriggerConfig) Validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must not be negative", ErrInvalidConfig)
	}
	for t, interval := range c.Intervals {
		if interval < 0 {
			return fmt.Errorf("%w: %s interval must not be negative", ErrInvalidConfig, t)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// SyncCronTrigger
// ---------------------------------------------------------------------------

// SyncCronTrigger runs due sync routines one after another in pipeline order
type SyncCronTrigger struct {
	config SyncCronTriggerConfig
	runner SyncRunner
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Last completed (not skipped) run per routine
	lastTriggeredMu sync.RWMutex
	lastTriggered   map[integration.SyncType]time.Time
}

// NewSyncCronTrigger creates a new sync cron trigger
func NewSyncCronTrigger(cfg SyncCronTriggerConfig, runner SyncRunner, log *zap.Logger) (*SyncCronTrigger, error) {
	if runner == nil {
		return nil, fmt.Errorf("%w: runner is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncCronTrigger{
		config:        cfg,
		runner:        runner,
		logger:        log.Named("scheduler"),
		now:           time.Now,
		lastTriggered: make(map[integration.SyncType]time.Time),
	}, nil
}

// Start starts the cron trigger
func (c *SyncCronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	fields := []zap.Field{zap.Duration("check_interval", c.config.CheckInterval)}
	for _, t := range integration.AllSyncTypes() {
		fields = append(fields, zap.Duration(t.String()+"_interval", c.config.Intervals[t]))
	}
	c.logger.Info("Sync cron trigger started", fields...)

	return nil
}

// Stop stops the cron trigger and waits for the current run to return
func (c *SyncCronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Sync cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (c *SyncCronTrigger) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}

// runLoop periodically checks and runs due routines
func (c *SyncCronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	// Run immediately on start
	c.checkAndRun(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndRun(ctx)
		}
	}
}

// checkAndRun runs every due routine in pipeline order
func (c *SyncCronTrigger) checkAndRun(ctx context.Context) {
	for _, t := range integration.AllSyncTypes() {
		if ctx.Err() != nil {
			return
		}
		if !c.isDue(t, c.now()) {
			continue
		}
		c.run(ctx, t, logger.TriggerSchedule)
	}
}

// isDue reports whether a routine's interval has elapsed since its last run
func (c *SyncCronTrigger) isDue(t integration.SyncType, now time.Time) bool {
	interval := c.config.Intervals[t]
	if interval <= 0 {
		return false
	}

	c.lastTriggeredMu.RLock()
	last, exists := c.lastTriggered[t]
	c.lastTriggeredMu.RUnlock()

	return !exists || now.Sub(last) >= interval
}

func (c *SyncCronTrigger) run(ctx context.Context, t integration.SyncType, trigger string) *integration.SyncResult {
	runCtx := ctx
	if c.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.config.RunTimeout)
		defer cancel()
	}
	runCtx, log := logger.WithTrigger(runCtx, c.logger, trigger)

	startedAt := c.now()
	log.Debug("Running sync routine", zap.String("sync_type", t.String()))
	result := c.runner.Run(runCtx, t)
	if result == nil {
		log.Error("Sync routine returned no result", zap.String("sync_type", t.String()))
		return nil
	}

	// A skipped pass never ran, so retry it on the next tick
	if result.Status == integration.SyncStatusSkipped {
		log.Info("Sync routine skipped", zap.String("sync_type", t.String()))
		return result
	}

	c.lastTriggeredMu.Lock()
	c.lastTriggered[t] = startedAt
	c.lastTriggeredMu.Unlock()
	return result
}

// TriggerNow runs a routine immediately and restarts its interval.
// While another pass holds the run lock the result is SKIPPED.
func (c *SyncCronTrigger) TriggerNow(ctx context.Context, t integration.SyncType) (*integration.SyncResult, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", integration.ErrUnknownSyncType, t)
	}

	c.logger.Info("Manual sync triggered", zap.String("sync_type", t.String()))
	return c.run(ctx, t, logger.TriggerManual), nil
}

// LastTriggered returns when a routine last ran through this trigger
func (c *SyncCronTrigger) LastTriggered(t integration.SyncType) (time.Time, bool) {
	c.lastTriggeredMu.RLock()
	defer c.lastTriggeredMu.RUnlock()
	last, ok := c.lastTriggered[t]
	return last, ok
}

// NextRun returns when a routine becomes due
func (c *SyncCronTrigger) NextRun(t integration.SyncType) (time.Time, error) {
	interval := c.config.Intervals[t]
	if interval <= 0 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnscheduledSyncType, t)
	}
	last, ok := c.LastTriggered(t)
	if !ok {
		return c.now(), nil
	}
	return last.Add(interval), nil
}

// GetSchedulerStats returns statistics about the scheduler
func (c *SyncCronTrigger) GetSchedulerStats() map[string]interface{} {
	stats := make(map[string]interface{})
	stats["is_running"] = c.IsRunning()
	stats["check_interval"] = c.config.CheckInterval.String()
	stats["run_timeout"] = c.config.RunTimeout.String()

	c.lastTriggeredMu.RLock()
	defer c.lastTriggeredMu.RUnlock()

	intervals := make(map[string]string)
	for t, interval := range c.config.Intervals {
		intervals[t.String()] = interval.String()
	}
	stats["intervals"] = intervals

	lastTriggered := make(map[string]string)
	for t, at := range c.lastTriggered {
		lastTriggered[t.String()] = at.Format(time.RFC3339)
	}
	stats["last_triggered"] = lastTriggered

	return stats
}
