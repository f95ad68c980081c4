package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/persistence/models"
)

const processedOrderBatchSize = 500

// GormCheckpointStore implements integration.CheckpointStore on a SQL database.
// The cursors live in a single row, processed order ids in their own table.
type GormCheckpointStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewGormCheckpointStore creates a new database-backed checkpoint store.
// The tables must exist, see Database.Migrate.
func NewGormCheckpointStore(db *gorm.DB, logger *zap.Logger) *GormCheckpointStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormCheckpointStore{
		db:     db,
		logger: logger.Named("checkpoint"),
		now:    time.Now,
	}
}

// Load reads the checkpoint. A database without a checkpoint row yields an
// empty checkpoint.
func (s *GormCheckpointStore) Load(ctx context.Context) (*integration.Checkpoint, error) {
	var row models.SyncCheckpointModel
	err := s.db.WithContext(ctx).First(&row, models.CheckpointRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("No checkpoint row found, starting from an empty checkpoint")
		row = models.SyncCheckpointModel{ID: models.CheckpointRowID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var orders []models.ProcessedOrderModel
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load processed orders: %w", err)
	}

	return row.ToDomain(orders), nil
}

// Save replaces the cursors and appends any new processed order ids in one transaction
func (s *GormCheckpointStore) Save(ctx context.Context, checkpoint *integration.Checkpoint) error {
	if checkpoint == nil {
		return errors.New("checkpoint: nil checkpoint")
	}
	snapshot := checkpoint.Clone()
	now := s.now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.SyncCheckpointModelFromDomain(snapshot, now)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		orders := models.ProcessedOrderModelsFromDomain(snapshot, now)
		if len(orders) == 0 {
			return nil
		}
		// Processed ids are append-only, existing rows keep their position
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(orders, processedOrderBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save processed orders: %w", err)
		}
		return nil
	})
}

// Ensure GormCheckpointStore implements the checkpoint port
var _ integration.CheckpointStore = (*GormCheckpointStore)(nil)
