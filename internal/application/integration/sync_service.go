package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultProductLimit is the number of storefront products read per offer pass
	DefaultProductLimit = 250
	// DefaultTrackingOrderLimit is the size of the storefront order page scanned per tracking pass
	DefaultTrackingOrderLimit = 250
	// DefaultHistorySize is the number of results kept in memory
	DefaultHistorySize = 50
)

// OfferArchive keeps a copy of every offer file sent to the marketplace
type OfferArchive interface {
	ArchiveOfferFile(ctx context.Context, syncType integration.SyncType, runID string, csv []byte) (string, error)
}

// SyncRecorder receives every finished sync result
type SyncRecorder interface {
	RecordSyncResult(ctx context.Context, result *integration.SyncResult)
}

// SyncOptions holds the tunables of the sync routines
type SyncOptions struct {
	// ProductLimit caps the products read per offer or inventory pass
	ProductLimit int
	// TrackingOrderLimit caps the storefront orders scanned per tracking pass
	TrackingOrderLimit int
	// AbortOnOrderFailure stops the order pass at the first failed order.
	// When false, failed orders are logged and the pass continues.
	AbortOnOrderFailure bool
	// Offer controls row building
	Offer OfferTransformOptions
	// HistorySize is the number of results kept for status queries
	HistorySize int
}

// DefaultSyncOptions returns the default sync options
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		ProductLimit:        DefaultProductLimit,
		TrackingOrderLimit:  DefaultTrackingOrderLimit,
		AbortOnOrderFailure: true,
		Offer:               DefaultOfferTransformOptions(),
		HistorySize:         DefaultHistorySize,
	}
}

// SyncServiceConfig holds the dependencies of the sync service
type SyncServiceConfig struct {
	Catalog     integration.CatalogSource
	Orders      integration.OrderSink
	Marketplace integration.MarketplaceSink
	Store       integration.CheckpointStore
	// Lock serializes passes. nil uses a process-local lock.
	Lock shared.RunLock
	// Archive is optional
	Archive OfferArchive
	// Recorder is optional
	Recorder SyncRecorder
	Options  SyncOptions
	Logger   *zap.Logger
	// Clock overrides time.Now in tests
	Clock func() time.Time
}

// SyncService runs the four sync routines against a shared checkpoint.
// Routines never return errors: every outcome is a SyncResult.
type SyncService struct {
	catalog     integration.CatalogSource
	orders      integration.OrderSink
	marketplace integration.MarketplaceSink
	store       integration.CheckpointStore
	lock        shared.RunLock
	archive     OfferArchive
	recorder    SyncRecorder
	options     SyncOptions
	logger      *zap.Logger
	now         func() time.Time

	mu          sync.RWMutex
	checkpoint  *integration.Checkpoint
	history     []*integration.SyncResult
	lastResults map[integration.SyncType]*integration.SyncResult
}

// NewSyncService creates a new SyncService
func NewSyncService(config SyncServiceConfig) (*SyncService, error) {
	if config.Catalog == nil || config.Orders == nil || config.Marketplace == nil {
		return nil, fmt.Errorf("%w: storefront and marketplace gateways are required", integration.ErrPlatformNotConfigured)
	}
	if config.Store == nil {
		return nil, errors.New("integration: checkpoint store is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lock := config.Lock
	if lock == nil {
		lock = &localRunLock{}
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}

	opts := config.Options
	if opts.ProductLimit <= 0 {
		opts.ProductLimit = DefaultProductLimit
	}
	if opts.TrackingOrderLimit <= 0 {
		opts.TrackingOrderLimit = DefaultTrackingOrderLimit
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	opts.Offer = opts.Offer.normalized()

	return &SyncService{
		catalog:     config.Catalog,
		orders:      config.Orders,
		marketplace: config.Marketplace,
		store:       config.Store,
		lock:        lock,
		archive:     config.Archive,
		recorder:    config.Recorder,
		options:     opts,
		logger:      logger,
		now:         now,
		lastResults: make(map[integration.SyncType]*integration.SyncResult),
	}, nil
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// SyncOffers pushes the full offer catalog to the marketplace
func (s *SyncService) SyncOffers(ctx context.Context) *integration.SyncResult {
	return s.Run(ctx, integration.SyncTypeOffers)
}

// SyncInventory pushes stock levels to the marketplace
func (s *SyncService) SyncInventory(ctx context.Context) *integration.SyncResult {
	return s.Run(ctx, integration.SyncTypeInventory)
}

// SyncOrders materializes new marketplace orders on the storefront
func (s *SyncService) SyncOrders(ctx context.Context) *integration.SyncResult {
	return s.Run(ctx, integration.SyncTypeOrders)
}

// SyncTracking pushes storefront shipment tracking to the marketplace
func (s *SyncService) SyncTracking(ctx context.Context) *integration.SyncResult {
	return s.Run(ctx, integration.SyncTypeTracking)
}

// RunAll runs every routine in order. A failed routine does not stop the next one.
func (s *SyncService) RunAll(ctx context.Context) []*integration.SyncResult {
	results := make([]*integration.SyncResult, 0, len(integration.AllSyncTypes()))
	for _, t := range integration.AllSyncTypes() {
		results = append(results, s.Run(ctx, t))
	}
	return results
}

// Run executes one routine under the run lock
func (s *SyncService) Run(ctx context.Context, syncType integration.SyncType) *integration.SyncResult {
	result := integration.NewSyncResult(syncType)
	ctx = integration.WithRun(ctx, result)
	log := s.logger.With(
		zap.String("sync_type", syncType.String()),
		zap.String("run_id", result.RunID.String()))

	routine, err := s.routineFor(syncType)
	if err != nil {
		result.Fail(err)
		s.finish(ctx, result)
		return result
	}

	acquired, err := s.lock.TryAcquire(ctx)
	if err != nil {
		log.Error("Failed to acquire run lock", zap.Error(err))
		result.Fail(fmt.Errorf("acquire run lock: %w", err))
		s.finish(ctx, result)
		return result
	}
	if !acquired {
		log.Info("Sync skipped, another pass is running")
		result.Skip(integration.ErrSyncAlreadyRunning)
		s.finish(ctx, result)
		return result
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to release run lock", zap.Error(err))
		}
	}()

	s.ensureCheckpoint(ctx)

	log.Info("Sync started")
	if err := s.invoke(ctx, routine, result); err != nil {
		result.Fail(err)
		log.Error("Sync failed",
			zap.Error(err),
			zap.Int("total", result.TotalCount),
			zap.Int("success", result.SuccessCount),
			zap.Int("failed", result.FailedCount),
			zap.Duration("duration", result.Duration()))
	} else {
		result.Complete()
		log.Info("Sync completed",
			zap.String("status", result.Status.String()),
			zap.Int("total", result.TotalCount),
			zap.Int("success", result.SuccessCount),
			zap.Int("skipped", result.SkippedCount),
			zap.Int("failed", result.FailedCount),
			zap.Duration("duration", result.Duration()))
	}

	s.finish(ctx, result)
	return result
}

type routineFunc func(ctx context.Context, result *integration.SyncResult, log *zap.Logger) error

func (s *SyncService) routineFor(t integration.SyncType) (routineFunc, error) {
	switch t {
	case integration.SyncTypeOffers:
		return s.runOffers, nil
	case integration.SyncTypeInventory:
		return s.runInventory, nil
	case integration.SyncTypeOrders:
		return s.runOrders, nil
	case integration.SyncTypeTracking:
		return s.runTracking, nil
	default:
		return nil, fmt.Errorf("%w: %q", integration.ErrUnknownSyncType, t)
	}
}

// invoke runs a routine and turns a panic into a failed result
func (s *SyncService) invoke(ctx context.Context, routine routineFunc, result *integration.SyncResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync routine panicked: %v", r)
		}
	}()
	log := s.logger.With(
		zap.String("sync_type", result.Type.String()),
		zap.String("run_id", result.RunID.String()))
	return routine(ctx, result, log)
}

func (s *SyncService) finish(ctx context.Context, result *integration.SyncResult) {
	s.mu.Lock()
	s.lastResults[result.Type] = result
	s.history = append(s.history, result)
	if over := len(s.history) - s.options.HistorySize; over > 0 {
		s.history = s.history[over:]
	}
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordSyncResult(ctx, result)
	}
}

// ---------------------------------------------------------------------------
// Offers and inventory
// ---------------------------------------------------------------------------

func (s *SyncService) runOffers(ctx context.Context, result *integration.SyncResult, log *zap.Logger) error {
	return s.pushOffers(ctx, result, log, integration.ImportModeNormal)
}

func (s *SyncService) runInventory(ctx context.Context, result *integration.SyncResult, log *zap.Logger) error {
	return s.pushOffers(ctx, result, log, integration.ImportModePartialUpdate)
}

func (s *SyncService) pushOffers(ctx context.Context, result *integration.SyncResult, log *zap.Logger, mode integration.ImportMode) error {
	passStart := s.now()

	items, err := s.catalog.ListProducts(ctx, s.options.ProductLimit)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	inventory := InventoryMap{}
	if ids := InventoryItemIDs(items); len(ids) > 0 {
		levels, err := s.catalog.ListInventoryLevels(ctx, ids)
		if err != nil {
			return fmt.Errorf("list inventory levels: %w", err)
		}
		inventory = BuildInventoryMap(levels)
	}

	rows := BuildOfferRows(items, inventory, s.options.Offer)
	result.TotalCount = len(rows)

	if len(rows) == 0 {
		log.Info("No offers to push", zap.Int("products", len(items)))
	} else {
		csv := EncodeOfferCSV(rows)
		s.archiveOffers(ctx, result, csv, log)

		imported, err := s.marketplace.ImportOffers(ctx, csv, mode)
		if err != nil {
			return fmt.Errorf("import offers: %w", err)
		}
		result.SuccessCount = len(rows)
		log.Info("Offer file accepted",
			zap.Int64("import_id", imported.ImportID),
			zap.String("import_mode", string(mode)),
			zap.Int("products", len(items)),
			zap.Int("rows", len(rows)))
	}

	s.advance(result.Type, passStart)
	s.persist(ctx, log)
	return nil
}

func (s *SyncService) archiveOffers(ctx context.Context, result *integration.SyncResult, csv []byte, log *zap.Logger) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.ArchiveOfferFile(ctx, result.Type, result.RunID.String(), csv)
	if err != nil {
		log.Warn("Failed to archive offer file", zap.Error(err))
		return
	}
	log.Debug("Offer file archived", zap.String("key", key))
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func (s *SyncService) runOrders(ctx context.Context, result *integration.SyncResult, log *zap.Logger) error {
	passStart := s.now()

	orders, err := s.marketplace.ListOrders(ctx, s.lastSync(integration.SyncTypeOrders))
	if err != nil {
		return fmt.Errorf("list marketplace orders: %w", err)
	}
	result.TotalCount = len(orders)

	for i := range orders {
		order := &orders[i]

		if s.isProcessed(order.ID) {
			result.SkippedCount++
			log.Debug("Order already processed", zap.String("marketplace_order_id", order.ID))
			continue
		}

		created, err := s.materializeOrder(ctx, order)
		if errors.Is(err, integration.ErrOrderSyncInvalidOrder) {
			result.SkippedCount++
			log.Warn("Marketplace order cannot be correlated, skipped",
				zap.String("marketplace_order_id", order.ID),
				zap.Error(err))
			continue
		}
		if err != nil {
			result.FailedCount++
			log.Error("Failed to create storefront order",
				zap.String("marketplace_order_id", order.ID),
				zap.Error(err))
			if s.options.AbortOnOrderFailure {
				// Keep the ids created so far but leave the cursor alone.
				s.persist(ctx, log)
				return fmt.Errorf("%w: order %s: %v", integration.ErrOrderSyncCreateFailed, order.ID, err)
			}
			continue
		}

		s.markProcessed(order.ID)
		result.SuccessCount++
		log.Info("Storefront order created",
			zap.String("marketplace_order_id", order.ID),
			zap.Int64("storefront_order_id", created.ID),
			zap.String("storefront_order_name", created.Name))
	}

	// Failed orders stay unprocessed. Holding the cursor makes the next pass fetch them again.
	if result.FailedCount == 0 {
		s.advance(integration.SyncTypeOrders, passStart)
	} else {
		log.Warn("Order cursor not advanced, failed orders will be retried",
			zap.Int("failed", result.FailedCount))
	}
	s.persist(ctx, log)
	return nil
}

func (s *SyncService) materializeOrder(ctx context.Context, order *integration.MarketplaceOrder) (*integration.CreatedOrder, error) {
	draft, err := BuildOrderDraft(order)
	if err != nil {
		return nil, err
	}
	created, err := s.orders.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, integration.ErrPlatformInvalidResponse
	}
	return created, nil
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

func (s *SyncService) runTracking(ctx context.Context, result *integration.SyncResult, log *zap.Logger) error {
	passStart := s.now()

	orders, err := s.catalog.ListOrdersSince(ctx, s.lastSync(integration.SyncTypeTracking), s.options.TrackingOrderLimit)
	if err != nil {
		return fmt.Errorf("list storefront orders: %w", err)
	}

	for i := range orders {
		order := &orders[i]
		if !IsTrackingCandidate(order) {
			continue
		}
		result.TotalCount++

		marketplaceOrderID, ok := integration.DecodeCorrelationID(order.Note, order.Tags)
		if !ok {
			result.SkippedCount++
			log.Warn("Marketplace order id not found on storefront order",
				zap.Int64("storefront_order_id", order.ID),
				zap.String("storefront_order_name", order.Name))
			continue
		}

		fulfillments, err := s.catalog.ListFulfillments(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("list fulfillments of order %d: %w", order.ID, err)
		}

		updates := BuildTrackingUpdates(fulfillments)
		if len(updates) == 0 {
			result.SkippedCount++
			log.Debug("No tracking number on fulfillments",
				zap.Int64("storefront_order_id", order.ID))
			continue
		}

		for _, update := range updates {
			if err := s.marketplace.UpdateTracking(ctx, marketplaceOrderID, update); err != nil {
				return fmt.Errorf("update tracking of order %s: %w", marketplaceOrderID, err)
			}
			log.Info("Tracking pushed",
				zap.String("marketplace_order_id", marketplaceOrderID),
				zap.String("carrier_code", update.CarrierCode),
				zap.String("tracking_number", update.TrackingNumber))
		}
		result.SuccessCount++
	}

	s.advance(integration.SyncTypeTracking, passStart)
	s.persist(ctx, log)
	return nil
}

// ---------------------------------------------------------------------------
// Checkpoint access
// ---------------------------------------------------------------------------

// LoadCheckpoint reads the checkpoint from the store. A load failure
// starts from an empty checkpoint.
func (s *SyncService) LoadCheckpoint(ctx context.Context) {
	cp, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load checkpoint, starting empty", zap.Error(err))
		cp = nil
	}
	if cp == nil {
		cp = integration.NewCheckpoint()
	}

	s.mu.Lock()
	s.checkpoint = cp
	s.mu.Unlock()

	s.logger.Info("Checkpoint loaded",
		zap.Int("processed_orders", cp.ProcessedCount()))
}

func (s *SyncService) ensureCheckpoint(ctx context.Context) {
	s.mu.RLock()
	loaded := s.checkpoint != nil
	s.mu.RUnlock()
	if !loaded {
		s.LoadCheckpoint(ctx)
	}
}

// Checkpoint returns a copy of the current checkpoint, nil before the first load
func (s *SyncService) Checkpoint() *integration.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.checkpoint == nil {
		return nil
	}
	return s.checkpoint.Clone()
}

// LastResult returns the most recent result of a routine
func (s *SyncService) LastResult(t integration.SyncType) (*integration.SyncResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.lastResults[t]
	return r, ok
}

// History returns up to limit recent results, newest first
func (s *SyncService) History(limit int) []*integration.SyncResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]*integration.SyncResult, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}

func (s *SyncService) lastSync(t integration.SyncType) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkpoint.LastSync(t)
}

func (s *SyncService) isProcessed(orderID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkpoint.IsProcessed(orderID)
}

func (s *SyncService) markProcessed(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint.MarkProcessed(orderID)
}

func (s *SyncService) advance(t integration.SyncType, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint.Advance(t, at)
}

// persist saves a snapshot of the checkpoint. Failures are logged only.
func (s *SyncService) persist(ctx context.Context, log *zap.Logger) {
	snapshot := s.Checkpoint()
	if snapshot == nil {
		return
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		log.Error("Failed to save checkpoint", zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Process-local lock
// ---------------------------------------------------------------------------

type localRunLock struct {
	mu   sync.Mutex
	held bool
}

func (l *localRunLock) TryAcquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *localRunLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}

func (l *localRunLock) Close() error { return nil }
