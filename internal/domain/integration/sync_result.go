package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncStatus represents the outcome of a sync pass
// ---------------------------------------------------------------------------

// SyncStatus represents the synchronization status
type SyncStatus string

const (
	// SyncStatusInProgress indicates the pass is running
	SyncStatusInProgress SyncStatus = "IN_PROGRESS"
	// SyncStatusSuccess indicates every item was synced
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates some items failed
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates the pass failed
	SyncStatusFailed SyncStatus = "FAILED"
	// SyncStatusSkipped indicates the pass did not run because another was in progress
	SyncStatusSkipped SyncStatus = "SKIPPED"
)

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// SyncResult is what every routine returns instead of propagating errors
type SyncResult struct {
	// RunID identifies this pass in logs
	RunID uuid.UUID
	// Type is the routine that ran
	Type SyncType
	// Status is the overall outcome
	Status SyncStatus
	// Success is false when the pass failed or was skipped
	Success bool
	// Err is the error that ended the pass, nil on success
	Err error
	// TotalCount is the number of items considered
	TotalCount int
	// SuccessCount is the number of items written to the other side
	SuccessCount int
	// SkippedCount is the number of items deliberately not written
	SkippedCount int
	// FailedCount is the number of items that failed
	FailedCount int
	// StartedAt is when the pass started
	StartedAt time.Time
	// FinishedAt is when the pass ended
	FinishedAt time.Time
}

// NewSyncResult starts a result for a routine
func NewSyncResult(t SyncType) *SyncResult {
	return &SyncResult{
		RunID:     uuid.New(),
		Type:      t,
		Status:    SyncStatusInProgress,
		StartedAt: time.Now(),
	}
}

// Complete derives the final status from the item counters
func (r *SyncResult) Complete() {
	r.FinishedAt = time.Now()
	switch {
	case r.FailedCount == 0:
		r.Status = SyncStatusSuccess
	case r.SuccessCount > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
	r.Success = r.Status != SyncStatusFailed
}

// Fail marks the pass as failed
func (r *SyncResult) Fail(err error) {
	r.FinishedAt = time.Now()
	r.Status = SyncStatusFailed
	r.Success = false
	r.Err = err
}

// Skip marks the pass as not run
func (r *SyncResult) Skip(err error) {
	r.FinishedAt = time.Now()
	r.Status = SyncStatusSkipped
	r.Success = false
	r.Err = err
}

// Duration returns how long the pass ran
func (r *SyncResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ErrorMessage returns the error text or an empty string
func (r *SyncResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ---------------------------------------------------------------------------
// Run context
// ---------------------------------------------------------------------------

type runContextKey struct{}

// RunInfo identifies the pass a context belongs to
type RunInfo struct {
	Type  SyncType
	RunID uuid.UUID
}

// WithRun tags ctx with the pass described by result. Adapters read it back
// with RunFromContext to label their own logs.
func WithRun(ctx context.Context, result *SyncResult) context.Context {
	if result == nil {
		return ctx
	}
	return context.WithValue(ctx, runContextKey{}, RunInfo{Type: result.Type, RunID: result.RunID})
}

// RunFromContext returns the pass ctx was tagged with
func RunFromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runContextKey{}).(RunInfo)
	return info, ok
}
