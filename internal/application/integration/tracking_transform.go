package integration

import (
	"strings"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// carrierCodes maps normalized storefront carrier names to marketplace carrier codes
var carrierCodes = map[string]string{
	"ups":         "UPS",
	"usps":        "USPS",
	"fedex":       "FEDEX",
	"dhl":         "DHL",
	"dhl express": "DHL",
	"dpd":         "DPD",
	"gls":         "GLS",
	"colissimo":   "COLISSIMO",
	"chronopost":  "CHRONOPOST",
	"la poste":    "LA_POSTE",
	"royal mail":  "ROYAL_MAIL",
	"tnt":         "TNT",
}

// CarrierCodeFor maps a storefront carrier name to a marketplace carrier code.
// Empty or unknown names map to CarrierCodeOther.
func CarrierCodeFor(company string) string {
	key := strings.ToLower(strings.Join(strings.Fields(company), " "))
	if code, ok := carrierCodes[key]; ok {
		return code
	}
	return integration.CarrierCodeOther
}

// BuildTrackingUpdates returns one update per fulfillment that carries a
// tracking number. The storefront carrier name is kept as the free-text
// carrier name.
func BuildTrackingUpdates(fulfillments []integration.Fulfillment) []integration.TrackingUpdate {
	updates := make([]integration.TrackingUpdate, 0, len(fulfillments))
	for _, f := range fulfillments {
		number := strings.TrimSpace(f.TrackingNumber)
		if number == "" {
			continue
		}
		updates = append(updates, integration.TrackingUpdate{
			CarrierCode:    CarrierCodeFor(f.TrackingCompany),
			CarrierName:    strings.TrimSpace(f.TrackingCompany),
			TrackingNumber: number,
			TrackingURL:    f.TrackingURL,
		})
	}
	return updates
}

// IsTrackingCandidate reports whether a storefront order came from the
// marketplace and is fully shipped
func IsTrackingCandidate(order *integration.StorefrontOrder) bool {
	return integration.HasMarketplaceOriginTag(order.Tags) && order.IsFullyFulfilled()
}
