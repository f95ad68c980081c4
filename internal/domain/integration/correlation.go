package integration

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Correlation
// ---------------------------------------------------------------------------
//
// The storefront order's tags and note are the only link back to the
// marketplace order. Every read and write of that link goes through
// EncodeCorrelation and DecodeCorrelationID.

const (
	// MarketplaceOriginTag marks storefront orders created from marketplace orders
	MarketplaceOriginTag = "Mirakl"

	correlationTagPrefix  = "Order-"
	correlationNotePrefix = "Mirakl Order ID: "
)

// noteCorrelationPattern captures the rest of the line, trimmed
var noteCorrelationPattern = regexp.MustCompile(`Mirakl Order ID:[ \t]*(\S(?:[^\r\n]*\S)?)`)

// Correlation is the tag/note pair embedded in a storefront order
type Correlation struct {
	Tags []string
	Note string
}

// ValidateCorrelationID reports whether an id survives EncodeCorrelation and
// DecodeCorrelationID unchanged. Tags are comma separated and the note is
// read up to the end of its line.
func ValidateCorrelationID(marketplaceOrderID string) error {
	switch {
	case marketplaceOrderID == "":
		return fmt.Errorf("%w: missing order id", ErrOrderSyncInvalidOrder)
	case strings.TrimSpace(marketplaceOrderID) != marketplaceOrderID:
		return fmt.Errorf("%w: order id %q has surrounding whitespace", ErrOrderSyncInvalidOrder, marketplaceOrderID)
	case strings.ContainsAny(marketplaceOrderID, ",\r\n"):
		return fmt.Errorf("%w: order id %q cannot be stored in tags", ErrOrderSyncInvalidOrder, marketplaceOrderID)
	}
	return nil
}

// EncodeCorrelation builds the tags and note that identify a marketplace order.
// The id must pass ValidateCorrelationID.
func EncodeCorrelation(marketplaceOrderID string) Correlation {
	return Correlation{
		Tags: []string{MarketplaceOriginTag, correlationTagPrefix + marketplaceOrderID},
		Note: correlationNotePrefix + marketplaceOrderID,
	}
}

// DecodeCorrelationID recovers the marketplace order id from a storefront
// order. The note is tried first, then the tags.
func DecodeCorrelationID(note, tags string) (string, bool) {
	if m := noteCorrelationPattern.FindStringSubmatch(note); m != nil {
		return m[1], true
	}
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if id, ok := strings.CutPrefix(tag, correlationTagPrefix); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// HasMarketplaceOriginTag reports whether a comma separated tag string
// contains the marketplace origin tag
func HasMarketplaceOriginTag(tags string) bool {
	for _, tag := range strings.Split(tags, ",") {
		if strings.EqualFold(strings.TrimSpace(tag), MarketplaceOriginTag) {
			return true
		}
	}
	return false
}
