package integration

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// SyncType identifies one of the four sync routines
// ---------------------------------------------------------------------------

// SyncType identifies a sync routine and the checkpoint cursor it owns
type SyncType string

const (
	// SyncTypeOffers pushes the full storefront catalog as marketplace offers
	SyncTypeOffers SyncType = "offers"
	// SyncTypeInventory pushes stock levels as a partial offer update
	SyncTypeInventory SyncType = "inventory"
	// SyncTypeOrders materialises marketplace orders in the storefront
	SyncTypeOrders SyncType = "orders"
	// SyncTypeTracking pushes storefront fulfillment tracking to the marketplace
	SyncTypeTracking SyncType = "tracking"
)

// AllSyncTypes returns every sync type in the order a full pass runs them
func AllSyncTypes() []SyncType {
	return []SyncType{SyncTypeOffers, SyncTypeInventory, SyncTypeOrders, SyncTypeTracking}
}

// IsValid returns true if the sync type is known
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeOffers, SyncTypeInventory, SyncTypeOrders, SyncTypeTracking:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncType
func (t SyncType) String() string {
	return string(t)
}

// ParseSyncType parses a case-insensitive sync type name.
// "products" is accepted as an alias of offers.
func ParseSyncType(s string) (SyncType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "products" {
		return SyncTypeOffers, nil
	}
	t := SyncType(name)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSyncType, s)
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Checkpoint
// ---------------------------------------------------------------------------

// Checkpoint is the persisted sync state. Timestamps are nil until the
// matching routine has completed once. ProcessedOrderIDs is append-only.
type Checkpoint struct {
	LastProductSync   *time.Time `json:"last_product_sync,omitempty"`
	LastInventorySync *time.Time `json:"last_inventory_sync,omitempty"`
	LastOrderSync     *time.Time `json:"last_order_sync,omitempty"`
	LastTrackingSync  *time.Time `json:"last_tracking_sync,omitempty"`
	ProcessedOrderIDs []string   `json:"processed_order_ids"`

	processed map[string]struct{}
}

// NewCheckpoint creates an empty checkpoint
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		ProcessedOrderIDs: make([]string, 0),
		processed:         make(map[string]struct{}),
	}
}

// index builds the membership set on first write. It also drops duplicate
// ids that may have been persisted by an older writer.
func (c *Checkpoint) index() {
	if c.processed != nil {
		return
	}
	c.ProcessedOrderIDs, c.processed = dedupeOrderIDs(c.ProcessedOrderIDs)
}

func dedupeOrderIDs(in []string) ([]string, map[string]struct{}) {
	set := make(map[string]struct{}, len(in))
	ids := make([]string, 0, len(in))
	for _, id := range in {
		if id == "" {
			continue
		}
		if _, seen := set[id]; seen {
			continue
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, set
}

// IsProcessed reports whether a marketplace order id was already materialised.
// Readers never modify the checkpoint.
func (c *Checkpoint) IsProcessed(orderID string) bool {
	if orderID == "" {
		return false
	}
	if c.processed == nil {
		return slices.Contains(c.ProcessedOrderIDs, orderID)
	}
	_, ok := c.processed[orderID]
	return ok
}

// MarkProcessed records a marketplace order id.
// Returns false if the id was already present.
func (c *Checkpoint) MarkProcessed(orderID string) bool {
	c.index()
	if orderID == "" {
		return false
	}
	if _, ok := c.processed[orderID]; ok {
		return false
	}
	c.processed[orderID] = struct{}{}
	c.ProcessedOrderIDs = append(c.ProcessedOrderIDs, orderID)
	return true
}

// ProcessedCount returns the number of distinct recorded order ids
func (c *Checkpoint) ProcessedCount() int {
	if c.processed == nil {
		ids, _ := dedupeOrderIDs(c.ProcessedOrderIDs)
		return len(ids)
	}
	return len(c.ProcessedOrderIDs)
}

// LastSync returns the cursor for a sync type, nil when the routine never completed
func (c *Checkpoint) LastSync(t SyncType) *time.Time {
	switch t {
	case SyncTypeOffers:
		return c.LastProductSync
	case SyncTypeInventory:
		return c.LastInventorySync
	case SyncTypeOrders:
		return c.LastOrderSync
	case SyncTypeTracking:
		return c.LastTrackingSync
	default:
		return nil
	}
}

// Advance moves the cursor of a sync type to at
func (c *Checkpoint) Advance(t SyncType, at time.Time) {
	ts := at.UTC()
	switch t {
	case SyncTypeOffers:
		c.LastProductSync = &ts
	case SyncTypeInventory:
		c.LastInventorySync = &ts
	case SyncTypeOrders:
		c.LastOrderSync = &ts
	case SyncTypeTracking:
		c.LastTrackingSync = &ts
	}
}

// Clone returns an indexed deep copy safe to hand to readers outside the
// engine. The receiver is only read.
func (c *Checkpoint) Clone() *Checkpoint {
	var ids []string
	var set map[string]struct{}
	if c.processed == nil {
		ids, set = dedupeOrderIDs(c.ProcessedOrderIDs)
	} else {
		ids = slices.Clone(c.ProcessedOrderIDs)
		set = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	if ids == nil {
		ids = make([]string, 0)
	}
	return &Checkpoint{
		LastProductSync:   cloneTime(c.LastProductSync),
		LastInventorySync: cloneTime(c.LastInventorySync),
		LastOrderSync:     cloneTime(c.LastOrderSync),
		LastTrackingSync:  cloneTime(c.LastTrackingSync),
		ProcessedOrderIDs: ids,
		processed:         set,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ---------------------------------------------------------------------------
// CheckpointStore Port
// ---------------------------------------------------------------------------

// CheckpointStore persists the checkpoint between process runs.
// Implementations must treat a missing or unreadable record as an empty
// checkpoint rather than an error; an error from Load means the backend
// itself could not be reached.
type CheckpointStore interface {
	// Load reads the persisted checkpoint
	Load(ctx context.Context) (*Checkpoint, error)

	// Save replaces the persisted checkpoint
	Save(ctx context.Context, checkpoint *Checkpoint) error
}
