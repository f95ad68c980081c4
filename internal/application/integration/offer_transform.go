package integration

import (
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultDescriptionMaxLength is the description cap in characters
	DefaultDescriptionMaxLength = 500
	// DefaultLeadTimeToShip is the number of days announced to ship an offer
	DefaultLeadTimeToShip = 2

	syntheticSKUPrefix = "SHOPIFY-"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// OfferTransformOptions controls how catalog items become offer rows
type OfferTransformOptions struct {
	// DescriptionMaxLength caps the description, in characters. <= 0 uses the default.
	DescriptionMaxLength int
	// LeadTimeToShip is written to every row. < 0 uses the default.
	LeadTimeToShip int
}

// DefaultOfferTransformOptions returns the default transform options
func DefaultOfferTransformOptions() OfferTransformOptions {
	return OfferTransformOptions{
		DescriptionMaxLength: DefaultDescriptionMaxLength,
		LeadTimeToShip:       DefaultLeadTimeToShip,
	}
}

func (o OfferTransformOptions) normalized() OfferTransformOptions {
	if o.DescriptionMaxLength <= 0 {
		o.DescriptionMaxLength = DefaultDescriptionMaxLength
	}
	if o.LeadTimeToShip < 0 {
		o.LeadTimeToShip = DefaultLeadTimeToShip
	}
	return o
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

// InventoryMap maps an inventory item reference to its available quantity
type InventoryMap map[int64]int64

// BuildInventoryMap sums the available quantity of each inventory item
// across locations. Untracked levels are ignored.
func BuildInventoryMap(levels []integration.InventoryLevel) InventoryMap {
	m := make(InventoryMap, len(levels))
	for _, level := range levels {
		if level.Available == nil {
			continue
		}
		m[level.InventoryItemID] += *level.Available
	}
	return m
}

// Quantity returns the clamped quantity for an inventory item.
// Unknown items and negative levels yield 0.
func (m InventoryMap) Quantity(inventoryItemID int64) int64 {
	return ClampQuantity(m[inventoryItemID])
}

// ClampQuantity floors a stock level at zero
func ClampQuantity(level int64) int64 {
	if level < 0 {
		return 0
	}
	return level
}

// InventoryItemIDs collects the distinct inventory item references of all variants
func InventoryItemIDs(items []integration.CatalogItem) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, item := range items {
		for _, variant := range item.Variants {
			if variant.InventoryItemID == 0 {
				continue
			}
			if _, ok := seen[variant.InventoryItemID]; ok {
				continue
			}
			seen[variant.InventoryItemID] = struct{}{}
			ids = append(ids, variant.InventoryItemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---------------------------------------------------------------------------
// Offer rows
// ---------------------------------------------------------------------------

// ResolveSKU returns the variant SKU, then its barcode, then a synthetic
// identifier built from the variant ID
func ResolveSKU(variant integration.CatalogVariant) string {
	if sku := strings.TrimSpace(variant.SKU); sku != "" {
		return sku
	}
	if barcode := strings.TrimSpace(variant.Barcode); barcode != "" {
		return barcode
	}
	return syntheticSKUPrefix + strconv.FormatInt(variant.ID, 10)
}

// SanitizeDescription turns product HTML into an offer description: markup
// is stripped, whitespace collapsed and the text truncated to maxLength
// characters. Embedded double quotes are doubled after truncation so a
// quote pair is never split.
func SanitizeDescription(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultDescriptionMaxLength
	}

	text := htmlTagPattern.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")
	text = norm.NFC.String(text)

	if runes := []rune(text); len(runes) > maxLength {
		text = strings.TrimSpace(string(runes[:maxLength]))
	}

	return strings.ReplaceAll(text, `"`, `""`)
}

// BuildOfferRows emits one row per variant of every catalog item.
// Items without variants produce no rows.
func BuildOfferRows(items []integration.CatalogItem, inventory InventoryMap, opts OfferTransformOptions) []integration.OfferRow {
	opts = opts.normalized()

	rows := make([]integration.OfferRow, 0)
	for _, item := range items {
		source := item.BodyHTML
		if strings.TrimSpace(source) == "" {
			source = item.Title
		}
		description := SanitizeDescription(source, opts.DescriptionMaxLength)

		for _, variant := range item.Variants {
			sku := ResolveSKU(variant)
			rows = append(rows, integration.OfferRow{
				SKU:            sku,
				ProductID:      sku,
				ProductIDType:  integration.OfferProductIDTypeShopSKU,
				Price:          variant.Price,
				Quantity:       inventory.Quantity(variant.InventoryItemID),
				State:          integration.OfferStateNew,
				Description:    description,
				LeadTimeToShip: opts.LeadTimeToShip,
			})
		}
	}
	return rows
}
