package integration

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// Platform Port Interfaces
// ---------------------------------------------------------------------------

// CatalogSource is the read side of the storefront.
// Concrete implementations live in the infrastructure layer.
type CatalogSource interface {
	// ListProducts returns up to limit products with their variants
	ListProducts(ctx context.Context, limit int) ([]CatalogItem, error)

	// ListInventoryLevels returns levels for exactly the given inventory items
	ListInventoryLevels(ctx context.Context, inventoryItemIDs []int64) ([]InventoryLevel, error)

	// ListFulfillments returns the fulfillments of a storefront order
	ListFulfillments(ctx context.Context, orderID int64) ([]Fulfillment, error)

	// ListOrdersSince returns one page of orders updated after since (nil = no bound)
	ListOrdersSince(ctx context.Context, since *time.Time, limit int) ([]StorefrontOrder, error)
}

// OrderSink is the write side of the storefront
type OrderSink interface {
	// CreateOrder creates a storefront order from a draft
	CreateOrder(ctx context.Context, draft *StorefrontOrderDraft) (*CreatedOrder, error)
}

// MarketplaceSink is the marketplace side of the sync
type MarketplaceSink interface {
	// ImportOffers uploads a semicolon separated offer file
	ImportOffers(ctx context.Context, csv []byte, mode ImportMode) (*ImportResult, error)

	// ListOrders returns orders created after since (nil = no bound)
	ListOrders(ctx context.Context, since *time.Time) ([]MarketplaceOrder, error)

	// UpdateTracking sets the tracking information of a marketplace order
	UpdateTracking(ctx context.Context, orderID string, update TrackingUpdate) error
}
