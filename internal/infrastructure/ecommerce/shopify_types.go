package ecommerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Product Related Types
// ---------------------------------------------------------------------------

// ShopifyProductListResponse is the response for GET /products.json
type ShopifyProductListResponse struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyProduct represents a product from the Shopify Admin API
type ShopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    *string          `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Variants    []ShopifyVariant `json:"variants"`
}

// ShopifyVariant represents a product variant
type ShopifyVariant struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	Title           string          `json:"title"`
	SKU             *string         `json:"sku"`
	Barcode         *string         `json:"barcode"`
	Price           decimal.Decimal `json:"price"`
	InventoryItemID int64           `json:"inventory_item_id"`
}

// ---------------------------------------------------------------------------
// Inventory Related Types
// ---------------------------------------------------------------------------

// ShopifyInventoryLevelListResponse is the response for GET /inventory_levels.json
type ShopifyInventoryLevelListResponse struct {
	InventoryLevels []ShopifyInventoryLevel `json:"inventory_levels"`
}

// ShopifyInventoryLevel is the stock of one inventory item at one location
type ShopifyInventoryLevel struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       *int64 `json:"available"`
}

// ---------------------------------------------------------------------------
// Order Related Types
// ---------------------------------------------------------------------------

// ShopifyOrderListResponse is the response for GET /orders.json
type ShopifyOrderListResponse struct {
	Orders []ShopifyOrder `json:"orders"`
}

// ShopifyOrder represents an order from the Shopify Admin API
type ShopifyOrder struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             *string   `json:"email"`
	Tags              string    `json:"tags"`
	Note              *string   `json:"note"`
	FulfillmentStatus *string   `json:"fulfillment_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ShopifyFulfillmentListResponse is the response for GET /orders/{id}/fulfillments.json
type ShopifyFulfillmentListResponse struct {
	Fulfillments []ShopifyFulfillment `json:"fulfillments"`
}

// ShopifyFulfillment represents a shipment of an order
type ShopifyFulfillment struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"order_id"`
	Status          string  `json:"status"`
	TrackingCompany *string `json:"tracking_company"`
	TrackingNumber  *string `json:"tracking_number"`
	TrackingURL     *string `json:"tracking_url"`
}

// ---------------------------------------------------------------------------
// Order Creation Types
// ---------------------------------------------------------------------------

// ShopifyCreateOrderRequest is the body of POST /orders.json
type ShopifyCreateOrderRequest struct {
	Order ShopifyNewOrder `json:"order"`
}

// ShopifyNewOrder is the order payload for creation
type ShopifyNewOrder struct {
	Email              string               `json:"email,omitempty"`
	LineItems          []ShopifyNewLineItem `json:"line_items"`
	ShippingAddress    *ShopifyAddress      `json:"shipping_address,omitempty"`
	BillingAddress     *ShopifyAddress      `json:"billing_address,omitempty"`
	FinancialStatus    string               `json:"financial_status"`
	Currency           string               `json:"currency,omitempty"`
	Tags               string               `json:"tags"`
	Note               string               `json:"note"`
	SendReceipt        bool                 `json:"send_receipt"`
	InventoryBehaviour string               `json:"inventory_behaviour,omitempty"`
}

// ShopifyNewLineItem is a custom line item
type ShopifyNewLineItem struct {
	Title    string          `json:"title"`
	SKU      string          `json:"sku,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ShopifyAddress is a Shopify postal address
type ShopifyAddress struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// ShopifyCreateOrderResponse is the response for POST /orders.json
type ShopifyCreateOrderResponse struct {
	Order *ShopifyOrder `json:"order"`
}

// stringValue dereferences an optional string
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
