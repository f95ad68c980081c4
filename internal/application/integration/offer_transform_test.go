package integration

import (
	"strings"
	"testing"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

func TestBuildInventoryMap(t *testing.T) {
	levels := []integration.InventoryLevel{
		{InventoryItemID: 1, LocationID: 10, Available: int64Ptr(3)},
		{InventoryItemID: 1, LocationID: 11, Available: int64Ptr(2)},
		{InventoryItemID: 2, LocationID: 10, Available: int64Ptr(-4)},
		{InventoryItemID: 3, LocationID: 10, Available: nil},
	}

	m := BuildInventoryMap(levels)

	assert.Equal(t, int64(5), m.Quantity(1))
	assert.Equal(t, int64(0), m.Quantity(2), "negative levels clamp to zero")
	assert.Equal(t, int64(0), m.Quantity(3), "untracked levels count as zero")
	assert.Equal(t, int64(0), m.Quantity(99), "unknown items count as zero")
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{-5, 0},
		{0, 0},
		{7, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampQuantity(tt.in))
	}
}

func TestInventoryItemIDs(t *testing.T) {
	items := []integration.CatalogItem{
		{ID: 1, Variants: []integration.CatalogVariant{{InventoryItemID: 30}, {InventoryItemID: 10}}},
		{ID: 2, Variants: []integration.CatalogVariant{{InventoryItemID: 10}, {InventoryItemID: 0}}},
		{ID: 3},
	}

	assert.Equal(t, []int64{10, 30}, InventoryItemIDs(items))
	assert.Empty(t, InventoryItemIDs(nil))
}

// ---------------------------------------------------------------------------
// SKU and description
// ---------------------------------------------------------------------------

func TestResolveSKU(t *testing.T) {
	tests := []struct {
		name    string
		variant integration.CatalogVariant
		want    string
	}{
		{"sku wins", integration.CatalogVariant{ID: 1, SKU: "A1", Barcode: "123"}, "A1"},
		{"barcode fallback", integration.CatalogVariant{ID: 1, Barcode: "4006381333931"}, "4006381333931"},
		{"blank sku falls back", integration.CatalogVariant{ID: 1, SKU: "  ", Barcode: "B"}, "B"},
		{"synthetic", integration.CatalogVariant{ID: 987}, "SHOPIFY-987"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSKU(tt.variant))
		})
	}
}

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		maxLen int
		want   string
	}{
		{"strips tags and doubles quotes", `<p>Nice "item"</p>`, 500, `Nice ""item""`},
		{"collapses whitespace", "<p>Line one</p>\n<p>Line   two</p>", 500, "Line one Line two"},
		{"unescapes entities", "Salt &amp; Pepper", 500, "Salt & Pepper"},
		{"empty", "", 500, ""},
		{"truncates by characters", "héllo wörld", 5, "héllo"},
		{"default cap", strings.Repeat("a", 600), 0, strings.Repeat("a", DefaultDescriptionMaxLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDescription(tt.raw, tt.maxLen))
		})
	}
}

func TestSanitizeDescription_TruncationKeepsQuotePairs(t *testing.T) {
	got := SanitizeDescription(`abcd"efgh`, 5)

	assert.Equal(t, `abcd""`, got)
	assert.Equal(t, 0, strings.Count(strings.ReplaceAll(got, `""`, ""), `"`))
}

// ---------------------------------------------------------------------------
// Rows
// ---------------------------------------------------------------------------

func TestBuildOfferRows(t *testing.T) {
	items := []integration.CatalogItem{
		{
			ID:       1,
			Title:    "Shirt",
			BodyHTML: `<p>Nice "item"</p>`,
			Variants: []integration.CatalogVariant{
				{ID: 11, SKU: "A1", Price: decimal.NewFromInt(10), InventoryItemID: 100},
				{ID: 12, Price: decimal.RequireFromString("4.5"), InventoryItemID: 101},
			},
		},
		{ID: 2, Title: "No variants"},
		{
			ID:    3,
			Title: "Plain title",
			Variants: []integration.CatalogVariant{
				{ID: 31, Barcode: "EAN1", Price: decimal.NewFromInt(1), InventoryItemID: 300},
			},
		},
	}
	inventory := InventoryMap{100: 3, 101: -2}

	rows := BuildOfferRows(items, inventory, DefaultOfferTransformOptions())
	require.Len(t, rows, 3)

	assert.Equal(t, "A1", rows[0].SKU)
	assert.Equal(t, "A1", rows[0].ProductID)
	assert.Equal(t, integration.OfferProductIDTypeShopSKU, rows[0].ProductIDType)
	assert.Equal(t, int64(3), rows[0].Quantity)
	assert.Equal(t, integration.OfferStateNew, rows[0].State)
	assert.Equal(t, `Nice ""item""`, rows[0].Description)
	assert.Equal(t, DefaultLeadTimeToShip, rows[0].LeadTimeToShip)

	assert.Equal(t, "SHOPIFY-12", rows[1].SKU)
	assert.Equal(t, int64(0), rows[1].Quantity)
	assert.True(t, rows[1].Price.Equal(decimal.RequireFromString("4.5")))

	assert.Equal(t, "EAN1", rows[2].SKU)
	assert.Equal(t, "Plain title", rows[2].Description, "title used when body is empty")
	assert.Equal(t, int64(0), rows[2].Quantity)
}

func TestBuildOfferRows_Empty(t *testing.T) {
	rows := BuildOfferRows(nil, nil, OfferTransformOptions{})
	assert.Empty(t, rows)
}
