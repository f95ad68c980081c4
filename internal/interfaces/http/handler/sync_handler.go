package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/logger"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/interfaces/http/dto"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SyncStatusProvider exposes the recent results and the checkpoint
type SyncStatusProvider interface {
	LastResult(t integration.SyncType) (*integration.SyncResult, bool)
	History(limit int) []*integration.SyncResult
	Checkpoint() *integration.Checkpoint
}

// ManualRunner runs a routine on request
type ManualRunner interface {
	TriggerNow(ctx context.Context, t integration.SyncType) (*integration.SyncResult, error)
}

// SchedulerStatsProvider is implemented by runners that also schedule
type SchedulerStatsProvider interface {
	GetSchedulerStats() map[string]interface{}
}

// SyncScheduleProvider is implemented by runners that run routines on a schedule
type SyncScheduleProvider interface {
	IsRunning() bool
	NextRun(t integration.SyncType) (time.Time, error)
}

// SyncHandler serves sync status and manual runs
type SyncHandler struct {
	BaseHandler
	status SyncStatusProvider
	runner ManualRunner
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(status SyncStatusProvider, runner ManualRunner) *SyncHandler {
	return &SyncHandler{status: status, runner: runner}
}

// GetStatus returns the last result per routine, recent history, the checkpoint
// and when each scheduled routine runs next
// GET /api/v1/sync/status?limit=20
func (h *SyncHandler) GetStatus(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			h.BadRequest(c, dto.ErrCodeBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	resp := dto.SyncStatusResponse{
		LastResults: make(map[string]*dto.SyncResultResponse),
		History:     dto.NewSyncResultResponses(h.status.History(limit)),
		Checkpoint:  dto.NewCheckpointResponse(h.status.Checkpoint()),
	}
	for _, t := range integration.AllSyncTypes() {
		if r, ok := h.status.LastResult(t); ok {
			resp.LastResults[t.String()] = dto.NewSyncResultResponse(r)
		}
	}
	if stats, ok := h.runner.(SchedulerStatsProvider); ok {
		resp.Scheduler = stats.GetSchedulerStats()
	}
	if schedule, ok := h.runner.(SyncScheduleProvider); ok && schedule.IsRunning() {
		resp.NextRuns = make(map[string]time.Time)
		for _, t := range integration.AllSyncTypes() {
			// Unscheduled routines only run on request
			if next, err := schedule.NextRun(t); err == nil {
				resp.NextRuns[t.String()] = next
			}
		}
	}

	h.Success(c, resp)
}

// Run runs one routine and returns its result
// POST /api/v1/sync/:type/run
func (h *SyncHandler) Run(c *gin.Context) {
	syncType, err := integration.ParseSyncType(c.Param("type"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidSyncType, err.Error())
		return
	}

	// The pass outlives a client that hangs up
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.runner.TriggerNow(ctx, syncType)
	if err != nil {
		if errors.Is(err, integration.ErrUnknownSyncType) {
			h.BadRequest(c, dto.ErrCodeInvalidSyncType, err.Error())
			return
		}
		logger.GetGinLogger(c).Error("Manual sync failed to start", zap.Error(err))
		h.InternalError(c, "failed to run sync")
		return
	}
	if result == nil {
		h.InternalError(c, "sync returned no result")
		return
	}

	if result.Status == integration.SyncStatusSkipped {
		h.Conflict(c, "another sync pass is running")
		return
	}

	h.Success(c, dto.NewSyncResultResponse(result))
}
