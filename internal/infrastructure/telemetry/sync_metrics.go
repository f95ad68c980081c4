package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	appintegration "github.com/saladpride-png/shopify-mirakl-sync/internal/application/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/logger"
)

// Ensure SyncMetrics implements SyncRecorder
var _ appintegration.SyncRecorder = (*SyncMetrics)(nil)

// Metric attribute keys.
var (
	AttrSyncType   = attribute.Key("sync_type")
	AttrSyncStatus = attribute.Key("status")
	AttrTrigger    = attribute.Key("trigger")
	AttrOutcome    = attribute.Key("outcome")
)

// SyncDurationBuckets are bucket boundaries for sync pass duration (seconds).
// Offer passes over a large catalog take minutes, order passes seconds.
var SyncDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800}

// SyncMetrics records the outcome of every sync pass.
type SyncMetrics struct {
	logger *zap.Logger

	runsTotal    metric.Int64Counter
	itemsTotal   metric.Int64Counter
	runDuration  metric.Float64Histogram
	lastSuccess  metric.Int64Gauge
	processedIDs metric.Int64Gauge
	cursorAge    metric.Int64Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
	now         func() time.Time
}

// CheckpointProvider exposes the current checkpoint for periodic collection.
type CheckpointProvider interface {
	Checkpoint() *integration.Checkpoint
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewSyncMetrics creates the sync instruments on the given meter.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sm := &SyncMetrics{
		logger:   log,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}

	var err error
	if sm.runsTotal, err = cfg.Meter.Int64Counter("sync_runs_total",
		metric.WithDescription("Total number of sync passes by type and status"),
		metric.WithUnit("{runs}")); err != nil {
		return nil, instrumentError("sync_runs_total", err)
	}
	if sm.itemsTotal, err = cfg.Meter.Int64Counter("sync_items_total",
		metric.WithDescription("Items handled by sync passes by type and outcome"),
		metric.WithUnit("{items}")); err != nil {
		return nil, instrumentError("sync_items_total", err)
	}
	if sm.runDuration, err = cfg.Meter.Float64Histogram("sync_run_duration_seconds",
		metric.WithDescription("Duration of sync passes"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(SyncDurationBuckets...)); err != nil {
		return nil, instrumentError("sync_run_duration_seconds", err)
	}
	if sm.lastSuccess, err = cfg.Meter.Int64Gauge("sync_last_success_timestamp_seconds",
		metric.WithDescription("Unix time of the last pass that did not fail"),
		metric.WithUnit("s")); err != nil {
		return nil, instrumentError("sync_last_success_timestamp_seconds", err)
	}
	if sm.processedIDs, err = cfg.Meter.Int64Gauge("sync_processed_orders",
		metric.WithDescription("Marketplace order ids recorded in the checkpoint"),
		metric.WithUnit("{orders}")); err != nil {
		return nil, instrumentError("sync_processed_orders", err)
	}
	if sm.cursorAge, err = cfg.Meter.Int64Gauge("sync_cursor_age_seconds",
		metric.WithDescription("Seconds since the checkpoint cursor of a sync type last advanced"),
		metric.WithUnit("s")); err != nil {
		return nil, instrumentError("sync_cursor_age_seconds", err)
	}

	return sm, nil
}

func instrumentError(name string, err error) error {
	return &MetricsError{Op: "NewSyncMetrics", Err: name + ": " + err.Error()}
}

// RecordSyncResult records one finished pass
func (sm *SyncMetrics) RecordSyncResult(ctx context.Context, result *integration.SyncResult) {
	if result == nil {
		return
	}

	typeAttr := AttrSyncType.String(result.Type.String())
	statusAttr := AttrSyncStatus.String(result.Status.String())
	attrs := []attribute.KeyValue{typeAttr, statusAttr}
	if trigger := logger.GetTrigger(ctx); trigger != "" {
		attrs = append(attrs, AttrTrigger.String(trigger))
	}

	sm.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Skipped passes never ran
	if result.Status == integration.SyncStatusSkipped {
		return
	}

	sm.runDuration.Record(ctx, result.Duration().Seconds(), metric.WithAttributes(typeAttr, statusAttr))
	sm.addItems(ctx, typeAttr, "success", result.SuccessCount)
	sm.addItems(ctx, typeAttr, "skipped", result.SkippedCount)
	sm.addItems(ctx, typeAttr, "failed", result.FailedCount)

	if result.Status != integration.SyncStatusFailed {
		sm.lastSuccess.Record(ctx, result.FinishedAt.Unix(), metric.WithAttributes(typeAttr))
	}
}

func (sm *SyncMetrics) addItems(ctx context.Context, typeAttr attribute.KeyValue, outcome string, n int) {
	if n <= 0 {
		return
	}
	sm.itemsTotal.Add(ctx, int64(n), metric.WithAttributes(typeAttr, AttrOutcome.String(outcome)))
}

// RecordCheckpoint records gauges derived from the checkpoint
func (sm *SyncMetrics) RecordCheckpoint(ctx context.Context, cp *integration.Checkpoint) {
	if cp == nil {
		return
	}

	sm.processedIDs.Record(ctx, int64(cp.ProcessedCount()))

	now := sm.now()
	for _, t := range integration.AllSyncTypes() {
		last := cp.LastSync(t)
		if last == nil {
			continue
		}
		sm.cursorAge.Record(ctx, int64(now.Sub(*last).Seconds()), metric.WithAttributes(AttrSyncType.String(t.String())))
	}
}

// StartPeriodicCollection starts periodic collection of checkpoint gauges.
// This is non-blocking - use Stop() to stop collection.
func (sm *SyncMetrics) StartPeriodicCollection(ctx context.Context, provider CheckpointProvider, interval time.Duration) {
	sm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go sm.runPeriodicCollection(ctx, provider, interval)
	})
}

func (sm *SyncMetrics) runPeriodicCollection(ctx context.Context, provider CheckpointProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sm.RecordCheckpoint(ctx, provider.Checkpoint())

	for {
		select {
		case <-sm.stopChan:
			sm.logger.Info("Stopping periodic sync metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.RecordCheckpoint(ctx, provider.Checkpoint())
		}
	}
}

// Stop stops the periodic collection.
func (sm *SyncMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
