package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestShopifyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShopifyConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &ShopifyConfig{ShopDomain: "my-shop.myshopify.com", AccessToken: "shpat_123"},
			wantErr: nil,
		},
		{
			name:    "base url instead of domain",
			config:  &ShopifyConfig{APIBaseURL: "http://127.0.0.1:8080/", AccessToken: "shpat_123"},
			wantErr: nil,
		},
		{
			name:    "missing shop domain",
			config:  &ShopifyConfig{AccessToken: "shpat_123"},
			wantErr: ErrShopifyConfigMissingShopDomain,
		},
		{
			name:    "missing access token",
			config:  &ShopifyConfig{ShopDomain: "my-shop.myshopify.com"},
			wantErr: ErrShopifyConfigMissingAccessToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tt.config.APIBaseURL)
				assert.Equal(t, DefaultShopifyAPIVersion, tt.config.APIVersion)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestShopifyConfig_AdminURL(t *testing.T) {
	config := NewShopifyConfig("https://my-shop.myshopify.com/", "token")
	require.NoError(t, config.Validate())

	assert.Equal(t, "https://my-shop.myshopify.com/admin/api/2024-01/products.json", config.AdminURL("/products.json"))
}

// ---------------------------------------------------------------------------
// Product Tests
// ---------------------------------------------------------------------------

func TestShopifyAdapter_ListProducts(t *testing.T) {
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		assert.Equal(t, "test_token", r.Header.Get("X-Shopify-Access-Token"))

		_, _ = io.WriteString(w, `{"products":[{
			"id": 1,
			"title": "Shirt",
			"body_html": "<p>Nice</p>",
			"vendor": "Acme",
			"variants": [
				{"id": 11, "product_id": 1, "title": "S", "sku": "A1", "barcode": null, "price": "10.00", "inventory_item_id": 100},
				{"id": 12, "product_id": 1, "title": "M", "sku": null, "barcode": "123", "price": "12.50", "inventory_item_id": 101}
			]
		}]}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	items, err := adapter.ListProducts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "<p>Nice</p>", item.BodyHTML)
	require.Len(t, item.Variants, 2)
	assert.Equal(t, "A1", item.Variants[0].SKU)
	assert.Equal(t, "", item.Variants[0].Barcode)
	assert.True(t, item.Variants[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "", item.Variants[1].SKU)
	assert.Equal(t, "123", item.Variants[1].Barcode)
	assert.Equal(t, int64(101), item.Variants[1].InventoryItemID)
}

func TestShopifyAdapter_ListInventoryLevels(t *testing.T) {
	var calls int
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/admin/api/2024-01/inventory_levels.json", r.URL.Path)
		assert.Equal(t, "100,101", r.URL.Query().Get("inventory_item_ids"))

		_, _ = io.WriteString(w, `{"inventory_levels":[
			{"inventory_item_id": 100, "location_id": 1, "available": 3},
			{"inventory_item_id": 101, "location_id": 1, "available": null}
		]}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	levels, err := adapter.ListInventoryLevels(context.Background(), []int64{100, 101})
	require.NoError(t, err)
	require.Len(t, levels, 2)
	require.NotNil(t, levels[0].Available)
	assert.Equal(t, int64(3), *levels[0].Available)
	assert.Nil(t, levels[1].Available)
	assert.Equal(t, 1, calls)
}

func TestShopifyAdapter_ListInventoryLevels_Chunks(t *testing.T) {
	var calls int
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"inventory_levels":[]}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	ids := make([]int64, 120)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	_, err := adapter.ListInventoryLevels(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	levels, err := adapter.ListInventoryLevels(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, levels)
	assert.Equal(t, 0, calls)
}

// ---------------------------------------------------------------------------
// Order Tests
// ---------------------------------------------------------------------------

func TestShopifyAdapter_ListOrdersSince(t *testing.T) {
	since := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		assert.Equal(t, "2024-05-01T10:00:00Z", r.URL.Query().Get("updated_at_min"))

		_, _ = io.WriteString(w, `{"orders":[{
			"id": 1001,
			"name": "#1001",
			"email": "jane@example.com",
			"tags": "Mirakl, Order-M1",
			"note": "Mirakl Order ID: M1",
			"fulfillment_status": "fulfilled",
			"created_at": "2024-05-01T12:00:00+02:00",
			"updated_at": "2024-05-02T12:00:00+02:00"
		},{
			"id": 1002,
			"name": "#1002",
			"tags": "",
			"note": null,
			"fulfillment_status": null,
			"created_at": "2024-05-01T12:00:00Z",
			"updated_at": "2024-05-01T12:00:00Z"
		}]}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	orders, err := adapter.ListOrdersSince(context.Background(), &since, 250)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(1001), orders[0].ID)
	assert.True(t, orders[0].IsFullyFulfilled())
	assert.Equal(t, "Mirakl Order ID: M1", orders[0].Note)
	assert.Equal(t, "", orders[1].Note)
	assert.False(t, orders[1].IsFullyFulfilled())
}

func TestShopifyAdapter_ListFulfillments(t *testing.T) {
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/orders/1001/fulfillments.json", r.URL.Path)

		_, _ = io.WriteString(w, `{"fulfillments":[
			{"id": 1, "order_id": 1001, "status": "success", "tracking_company": "UPS", "tracking_number": "1Z", "tracking_url": "https://ups.example/1Z"},
			{"id": 2, "order_id": 1001, "status": "success", "tracking_company": null, "tracking_number": null, "tracking_url": null}
		]}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	fulfillments, err := adapter.ListFulfillments(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, fulfillments, 2)
	assert.Equal(t, "UPS", fulfillments[0].TrackingCompany)
	assert.Equal(t, "1Z", fulfillments[0].TrackingNumber)
	assert.Equal(t, "", fulfillments[1].TrackingNumber)
}

func TestShopifyAdapter_CreateOrder(t *testing.T) {
	var received ShopifyCreateOrderRequest

	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"order":{"id": 5001, "name": "#1005"}}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	draft := &integration.StorefrontOrderDraft{
		Email: "jane@example.com",
		LineItems: []integration.DraftLineItem{
			{Title: "Shirt", SKU: "A1", Quantity: 2, Price: decimal.RequireFromString("10.50")},
		},
		ShippingAddress: &integration.Address{FirstName: "Jane", Address1: "1 Main St", Zip: "75001", CountryCode: "FR"},
		FinancialStatus: integration.FinancialStatusPaid,
		Currency:        "EUR",
		Tags:            []string{"Mirakl", "Order-M1"},
		Note:            "Mirakl Order ID: M1",
	}

	created, err := adapter.CreateOrder(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), created.ID)
	assert.Equal(t, "#1005", created.Name)

	assert.Equal(t, "paid", received.Order.FinancialStatus)
	assert.Equal(t, "Mirakl, Order-M1", received.Order.Tags)
	assert.Equal(t, "Mirakl Order ID: M1", received.Order.Note)
	assert.False(t, received.Order.SendReceipt)
	require.Len(t, received.Order.LineItems, 1)
	assert.True(t, received.Order.LineItems[0].Price.Equal(decimal.RequireFromString("10.5")))
	require.NotNil(t, received.Order.ShippingAddress)
	assert.Equal(t, "1 Main St", received.Order.ShippingAddress.Address1)
	assert.Nil(t, received.Order.BillingAddress)
}

func TestShopifyAdapter_CreateOrder_InvalidResponse(t *testing.T) {
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	_, err := adapter.CreateOrder(context.Background(), &integration.StorefrontOrderDraft{})
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}

// ---------------------------------------------------------------------------
// Error Tests
// ---------------------------------------------------------------------------

func TestShopifyAdapter_HTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, integration.ErrPlatformAuthFailed},
		{"rate limited", http.StatusTooManyRequests, integration.ErrPlatformRateLimited},
		{"unprocessable", http.StatusUnprocessableEntity, integration.ErrPlatformRequestFailed},
		{"server error", http.StatusBadGateway, integration.ErrPlatformUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"errors":"nope"}`)
			})
			defer server.Close()

			adapter := createTestShopifyAdapterWithServer(t, server.URL)

			_, err := adapter.ListProducts(context.Background(), 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, `{"errors":"nope"}`, apiErr.Body)
			assert.True(t, IsAPIStatus(err, tt.status))
		})
	}
}

func TestShopifyAdapter_Unreachable(t *testing.T) {
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := server.URL
	server.Close()

	adapter := createTestShopifyAdapterWithServer(t, url)

	_, err := adapter.ListProducts(context.Background(), 10)
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
}

func TestShopifyAdapter_MalformedJSON(t *testing.T) {
	server := createMockShopifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"products": [`)
	})
	defer server.Close()

	adapter := createTestShopifyAdapterWithServer(t, server.URL)

	_, err := adapter.ListProducts(context.Background(), 10)
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func createTestShopifyAdapterWithServer(t *testing.T, serverURL string) *ShopifyAdapter {
	config := &ShopifyConfig{
		APIBaseURL:        serverURL,
		AccessToken:       "test_token",
		TimeoutSeconds:    5,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}
	adapter, err := NewShopifyAdapter(config)
	require.NoError(t, err)
	return adapter
}

func createMockShopifyServer(_ *testing.T, handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}
