package integration

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Marketplace Orders
// ---------------------------------------------------------------------------

// MarketplaceOrder represents an order pulled from the marketplace
type MarketplaceOrder struct {
	// ID is the marketplace order ID (e.g. "ABC123-A")
	ID string
	// State is the marketplace order state (e.g. SHIPPING)
	State string
	// Currency is the ISO currency code
	Currency string
	// CreatedAt is when the order was placed
	CreatedAt time.Time
	// CustomerEmail is the customer notification email, may be empty
	CustomerEmail string
	// CustomerFirstName is the customer's first name
	CustomerFirstName string
	// CustomerLastName is the customer's last name
	CustomerLastName string
	// Lines contains the order lines
	Lines []MarketplaceOrderLine
	// ShippingAddress is nil when the marketplace does not expose one
	ShippingAddress *MarketplaceAddress
	// BillingAddress is nil when the marketplace does not expose one
	BillingAddress *MarketplaceAddress
}

// MarketplaceOrderLine is one line of a marketplace order
type MarketplaceOrderLine struct {
	// ID is the order line ID
	ID string
	// OfferSKU is the shop SKU of the sold offer
	OfferSKU string
	// ProductTitle is the product title; empty when the marketplace omits it
	ProductTitle string
	// Quantity is the ordered quantity
	Quantity int
	// Price is the unit price
	Price decimal.Decimal
}

// MarketplaceAddress is a marketplace postal address block
type MarketplaceAddress struct {
	FirstName      string
	LastName       string
	Company        string
	Street1        string
	Street2        string
	City           string
	State          string
	ZipCode        string
	Country        string
	CountryISOCode string
	Phone          string
}

// ---------------------------------------------------------------------------
// Offers
// ---------------------------------------------------------------------------

const (
	// OfferProductIDTypeShopSKU tells the marketplace that product-id is the shop sku
	OfferProductIDTypeShopSKU = "SHOP_SKU"
	// OfferStateNew is the marketplace state code for a new, active offer
	OfferStateNew = "11"
)

// OfferRow is one row of a marketplace offer import. Quantity is never negative.
type OfferRow struct {
	SKU            string
	ProductID      string
	ProductIDType  string
	Price          decimal.Decimal
	Quantity       int64
	State          string
	Description    string
	LeadTimeToShip int
}

// ImportMode selects how the marketplace applies an offer import
type ImportMode string

const (
	// ImportModeNormal creates or fully updates every offer in the file
	ImportModeNormal ImportMode = "NORMAL"
	// ImportModePartialUpdate only updates the columns present in the file
	ImportModePartialUpdate ImportMode = "PARTIAL_UPDATE"
)

// ImportResult is the marketplace acknowledgement of an offer import
type ImportResult struct {
	// ImportID is the marketplace import tracking ID
	ImportID int64
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// CarrierCodeOther is used when the storefront fulfillment names no carrier
const CarrierCodeOther = "OTHER"

// TrackingUpdate is the shipment information pushed to a marketplace order
type TrackingUpdate struct {
	// CarrierCode is the marketplace carrier code
	CarrierCode string
	// CarrierName is the free-text carrier name
	CarrierName string
	// TrackingNumber is the shipment tracking number
	TrackingNumber string
	// TrackingURL is the carrier tracking URL
	TrackingURL string
}
