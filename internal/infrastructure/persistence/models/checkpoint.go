package models

import (
	"time"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// CheckpointRowID is the primary key of the single checkpoint row
const CheckpointRowID uint = 1

// SyncCheckpointModel is the persistence model for the sync cursors.
// The table holds exactly one row.
type SyncCheckpointModel struct {
	ID                uint `gorm:"primaryKey;autoIncrement:false"`
	LastProductSync   *time.Time
	LastInventorySync *time.Time
	LastOrderSync     *time.Time
	LastTrackingSync  *time.Time
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncCheckpointModel) TableName() string {
	return "sync_checkpoints"
}

// ProcessedOrderModel records one marketplace order already materialised in
// the storefront. Position keeps the append order of the id list.
type ProcessedOrderModel struct {
	OrderID     string    `gorm:"type:varchar(100);primaryKey"`
	Position    int       `gorm:"not null;index"`
	ProcessedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProcessedOrderModel) TableName() string {
	return "processed_orders"
}

// ToDomain assembles the domain checkpoint from the cursor row and the
// processed orders, which must be sorted by position.
func (m *SyncCheckpointModel) ToDomain(orders []ProcessedOrderModel) *integration.Checkpoint {
	cp := integration.NewCheckpoint()
	cp.LastProductSync = utcPtr(m.LastProductSync)
	cp.LastInventorySync = utcPtr(m.LastInventorySync)
	cp.LastOrderSync = utcPtr(m.LastOrderSync)
	cp.LastTrackingSync = utcPtr(m.LastTrackingSync)
	for _, o := range orders {
		cp.MarkProcessed(o.OrderID)
	}
	return cp
}

// SyncCheckpointModelFromDomain creates the cursor row from a domain checkpoint
func SyncCheckpointModelFromDomain(cp *integration.Checkpoint, now time.Time) *SyncCheckpointModel {
	return &SyncCheckpointModel{
		ID:                CheckpointRowID,
		LastProductSync:   cp.LastProductSync,
		LastInventorySync: cp.LastInventorySync,
		LastOrderSync:     cp.LastOrderSync,
		LastTrackingSync:  cp.LastTrackingSync,
		UpdatedAt:         now,
	}
}

// ProcessedOrderModelsFromDomain creates one row per processed order id
func ProcessedOrderModelsFromDomain(cp *integration.Checkpoint, now time.Time) []ProcessedOrderModel {
	out := make([]ProcessedOrderModel, 0, len(cp.ProcessedOrderIDs))
	for i, id := range cp.ProcessedOrderIDs {
		out = append(out, ProcessedOrderModel{OrderID: id, Position: i, ProcessedAt: now})
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
