package dto

import (
	"time"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// SyncResultResponse is the API view of one sync pass
type SyncResultResponse struct {
	RunID        string     `json:"run_id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Success      bool       `json:"success"`
	Error        string     `json:"error,omitempty"`
	TotalCount   int        `json:"total_count"`
	SuccessCount int        `json:"success_count"`
	SkippedCount int        `json:"skipped_count"`
	FailedCount  int        `json:"failed_count"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	DurationMs   int64      `json:"duration_ms"`
}

// NewSyncResultResponse converts a domain result
func NewSyncResultResponse(r *integration.SyncResult) *SyncResultResponse {
	if r == nil {
		return nil
	}
	resp := &SyncResultResponse{
		RunID:        r.RunID.String(),
		Type:         r.Type.String(),
		Status:       r.Status.String(),
		Success:      r.Success,
		Error:        r.ErrorMessage(),
		TotalCount:   r.TotalCount,
		SuccessCount: r.SuccessCount,
		SkippedCount: r.SkippedCount,
		FailedCount:  r.FailedCount,
		StartedAt:    r.StartedAt,
		DurationMs:   r.Duration().Milliseconds(),
	}
	if !r.FinishedAt.IsZero() {
		finished := r.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

// NewSyncResultResponses converts a list of domain results
func NewSyncResultResponses(results []*integration.SyncResult) []*SyncResultResponse {
	out := make([]*SyncResultResponse, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, NewSyncResultResponse(r))
		}
	}
	return out
}

// CheckpointResponse summarises the checkpoint without the full id list
type CheckpointResponse struct {
	LastProductSync     *time.Time `json:"last_product_sync,omitempty"`
	LastInventorySync   *time.Time `json:"last_inventory_sync,omitempty"`
	LastOrderSync       *time.Time `json:"last_order_sync,omitempty"`
	LastTrackingSync    *time.Time `json:"last_tracking_sync,omitempty"`
	ProcessedOrderCount int        `json:"processed_order_count"`
}

// NewCheckpointResponse converts a checkpoint, nil before the first load
func NewCheckpointResponse(cp *integration.Checkpoint) *CheckpointResponse {
	if cp == nil {
		return nil
	}
	return &CheckpointResponse{
		LastProductSync:     cp.LastProductSync,
		LastInventorySync:   cp.LastInventorySync,
		LastOrderSync:       cp.LastOrderSync,
		LastTrackingSync:    cp.LastTrackingSync,
		ProcessedOrderCount: cp.ProcessedCount(),
	}
}

// SyncStatusResponse is returned by the status endpoint
type SyncStatusResponse struct {
	LastResults map[string]*SyncResultResponse `json:"last_results"`
	History     []*SyncResultResponse          `json:"history"`
	Checkpoint  *CheckpointResponse            `json:"checkpoint,omitempty"`
	Scheduler   map[string]interface{}         `json:"scheduler,omitempty"`
	NextRuns    map[string]time.Time           `json:"next_runs,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
