package integration

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Storefront Value Objects
// ---------------------------------------------------------------------------

// CatalogItem represents a storefront product and its variants
type CatalogItem struct {
	// ID is the product ID on the storefront
	ID int64
	// Title is the product title
	Title string
	// BodyHTML is the raw product description (may contain markup)
	BodyHTML string
	// Vendor is the product vendor
	Vendor string
	// ProductType is the storefront product type
	ProductType string
	// Variants contains the sellable variants
	Variants []CatalogVariant
}

// CatalogVariant represents a sellable variant of a storefront product
type CatalogVariant struct {
	// ID is the variant ID on the storefront
	ID int64
	// ProductID is the owning product ID
	ProductID int64
	// Title is the variant title (e.g. "Red / XL")
	Title string
	// SKU is the merchant SKU, empty when not set
	SKU string
	// Barcode is the variant barcode (EAN/UPC), empty when not set
	Barcode string
	// Price is the unit selling price
	Price decimal.Decimal
	// InventoryItemID joins the variant to its inventory levels
	InventoryItemID int64
}

// InventoryLevel is the available quantity of one inventory item at one location
type InventoryLevel struct {
	// InventoryItemID is the inventory item reference
	InventoryItemID int64
	// LocationID is the stock location
	LocationID int64
	// Available is the available quantity; nil when the storefront does not track it.
	// May be negative.
	Available *int64
}

// Fulfillment is a storefront shipment record
type Fulfillment struct {
	// ID is the fulfillment ID
	ID int64
	// OrderID is the owning storefront order
	OrderID int64
	// Status is the fulfillment status (e.g. success, cancelled)
	Status string
	// TrackingCompany is the carrier name as entered on the storefront
	TrackingCompany string
	// TrackingNumber is the primary tracking number, empty when none
	TrackingNumber string
	// TrackingURL is the carrier tracking URL
	TrackingURL string
}

// StorefrontOrder is the subset of a storefront order the tracking sync needs
type StorefrontOrder struct {
	// ID is the storefront order ID
	ID int64
	// Name is the human order number (e.g. #1001)
	Name string
	// Email is the customer email
	Email string
	// Tags is the comma separated tag string
	Tags string
	// Note is the free-text order note
	Note string
	// FulfillmentStatus is fulfilled, partial or empty
	FulfillmentStatus string
	// CreatedAt is when the order was created
	CreatedAt time.Time
	// UpdatedAt is when the order was last modified
	UpdatedAt time.Time
}

// FulfillmentStatusFulfilled marks a storefront order whose items are all shipped
const FulfillmentStatusFulfilled = "fulfilled"

// IsFullyFulfilled returns true if every line of the order is fulfilled
func (o *StorefrontOrder) IsFullyFulfilled() bool {
	return o.FulfillmentStatus == FulfillmentStatusFulfilled
}

// ---------------------------------------------------------------------------
// Storefront Order Creation
// ---------------------------------------------------------------------------

// FinancialStatusPaid is the payment marker set on every materialised order
const FinancialStatusPaid = "paid"

// StorefrontOrderDraft is the payload used to create a storefront order
type StorefrontOrderDraft struct {
	// Email is the customer email
	Email string
	// LineItems contains the ordered lines
	LineItems []DraftLineItem
	// ShippingAddress is nil when the marketplace order carries none
	ShippingAddress *Address
	// BillingAddress is nil when the marketplace order carries none
	BillingAddress *Address
	// FinancialStatus is always FinancialStatusPaid
	FinancialStatus string
	// Currency is the ISO currency code, empty to use the shop default
	Currency string
	// Tags carries the marketplace origin tag and the correlation tag
	Tags []string
	// Note carries the correlation note
	Note string
}

// DraftLineItem is a custom (non catalog-linked) line on a draft order
type DraftLineItem struct {
	// Title is the line title
	Title string
	// SKU is the offer SKU the marketplace sold
	SKU string
	// Quantity is the ordered quantity
	Quantity int
	// Price is the unit price
	Price decimal.Decimal
}

// Address is a storefront postal address
type Address struct {
	FirstName   string
	LastName    string
	Company     string
	Address1    string
	Address2    string
	City        string
	Province    string
	Zip         string
	Country     string
	CountryCode string
	Phone       string
}

// CreatedOrder is the storefront's acknowledgement of an order creation
type CreatedOrder struct {
	// ID is the storefront order ID
	ID int64
	// Name is the human order number (e.g. #1001)
	Name string
}
