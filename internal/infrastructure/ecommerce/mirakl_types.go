package ecommerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Offer Import Types
// ---------------------------------------------------------------------------

// MiraklOfferImportResponse is the response for POST /api/offers/imports (OF01)
type MiraklOfferImportResponse struct {
	ImportID int64 `json:"import_id"`
}

// ---------------------------------------------------------------------------
// Order Related Types
// ---------------------------------------------------------------------------

// MiraklOrderListResponse is the response for GET /api/orders (OR11)
type MiraklOrderListResponse struct {
	Orders     []MiraklOrder `json:"orders"`
	TotalCount int           `json:"total_count"`
}

// MiraklOrder represents an order from the Mirakl shop API
type MiraklOrder struct {
	OrderID                   string            `json:"order_id"`
	OrderState                string            `json:"order_state"`
	CurrencyISOCode           string            `json:"currency_iso_code"`
	CreatedDate               time.Time         `json:"created_date"`
	CustomerNotificationEmail *string           `json:"customer_notification_email"`
	Customer                  *MiraklCustomer   `json:"customer"`
	OrderLines                []MiraklOrderLine `json:"order_lines"`
	ShippingDeadline          *time.Time        `json:"shipping_deadline"`
	TotalPrice                decimal.Decimal   `json:"total_price"`
}

// MiraklCustomer is the customer block of an order
type MiraklCustomer struct {
	CustomerID      string         `json:"customer_id"`
	FirstName       string         `json:"firstname"`
	LastName        string         `json:"lastname"`
	Email           *string        `json:"email"`
	ShippingAddress *MiraklAddress `json:"shipping_address"`
	BillingAddress  *MiraklAddress `json:"billing_address"`
}

// MiraklAddress is a Mirakl postal address
type MiraklAddress struct {
	FirstName      string  `json:"firstname"`
	LastName       string  `json:"lastname"`
	Company        *string `json:"company"`
	Street1        string  `json:"street_1"`
	Street2        *string `json:"street_2"`
	City           string  `json:"city"`
	State          *string `json:"state"`
	ZipCode        string  `json:"zip_code"`
	Country        string  `json:"country"`
	CountryISOCode string  `json:"country_iso_code"`
	Phone          *string `json:"phone"`
}

// MiraklOrderLine is one line of a Mirakl order
type MiraklOrderLine struct {
	OrderLineID  string          `json:"order_line_id"`
	OfferSKU     string          `json:"offer_sku"`
	ProductTitle *string         `json:"product_title"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

// ---------------------------------------------------------------------------
// Tracking Types
// ---------------------------------------------------------------------------

// MiraklTrackingRequest is the body of PUT /api/orders/{id}/tracking (OR23)
type MiraklTrackingRequest struct {
	CarrierCode    string `json:"carrier_code,omitempty"`
	CarrierName    string `json:"carrier_name,omitempty"`
	CarrierURL     string `json:"carrier_url,omitempty"`
	TrackingNumber string `json:"tracking_number"`
}
