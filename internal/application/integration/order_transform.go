package integration

import (
	"fmt"
	"strings"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// DefaultLineItemTitle is used when a marketplace line carries no product title
const DefaultLineItemTitle = "Marketplace item"

// BuildOrderDraft converts a marketplace order into a storefront order draft.
// The draft is marked paid and carries the correlation tags and note.
func BuildOrderDraft(order *integration.MarketplaceOrder) (*integration.StorefrontOrderDraft, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: missing order", integration.ErrOrderSyncInvalidOrder)
	}
	if err := integration.ValidateCorrelationID(order.ID); err != nil {
		return nil, err
	}

	lines := make([]integration.DraftLineItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		title := strings.TrimSpace(line.ProductTitle)
		if title == "" {
			title = DefaultLineItemTitle
		}
		lines = append(lines, integration.DraftLineItem{
			Title:    title,
			SKU:      line.OfferSKU,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	correlation := integration.EncodeCorrelation(order.ID)

	return &integration.StorefrontOrderDraft{
		Email:           order.CustomerEmail,
		LineItems:       lines,
		ShippingAddress: ConvertAddress(order.ShippingAddress),
		BillingAddress:  ConvertAddress(order.BillingAddress),
		FinancialStatus: integration.FinancialStatusPaid,
		Currency:        order.Currency,
		Tags:            correlation.Tags,
		Note:            correlation.Note,
	}, nil
}

// ConvertAddress renames marketplace address fields to storefront ones.
// A nil address stays nil.
func ConvertAddress(addr *integration.MarketplaceAddress) *integration.Address {
	if addr == nil {
		return nil
	}
	return &integration.Address{
		FirstName:   addr.FirstName,
		LastName:    addr.LastName,
		Company:     addr.Company,
		Address1:    addr.Street1,
		Address2:    addr.Street2,
		City:        addr.City,
		Province:    addr.State,
		Zip:         addr.ZipCode,
		Country:     addr.Country,
		CountryCode: addr.CountryISOCode,
		Phone:       addr.Phone,
	}
}
