package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

const (
	// maxShopifyResponseSize limits the response body size to prevent memory exhaustion
	maxShopifyResponseSize = 10 * 1024 * 1024 // 10MB max response

	shopifyPlatform = "shopify"
	// shopifyInventoryBehaviour decrements stock for marketplace sales without blocking on policy
	shopifyInventoryBehaviour = "decrement_ignoring_policy"
)

// ShopifyAdapter implements the storefront ports on the Shopify Admin REST API
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}, nil
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// ListProducts returns up to limit products with their variants
func (a *ShopifyAdapter) ListProducts(ctx context.Context, limit int) ([]integration.CatalogItem, error) {
	if limit <= 0 || limit > ShopifyMaxPageSize {
		limit = ShopifyMaxPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var resp ShopifyProductListResponse
	if err := a.doJSON(ctx, http.MethodGet, "/products.json", query, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]integration.CatalogItem, 0, len(resp.Products))
	for i := range resp.Products {
		items = append(items, convertShopifyProduct(&resp.Products[i]))
	}
	return items, nil
}

// ListInventoryLevels returns levels for exactly the given inventory items.
// Large id sets are fetched in chunks.
func (a *ShopifyAdapter) ListInventoryLevels(ctx context.Context, inventoryItemIDs []int64) ([]integration.InventoryLevel, error) {
	levels := make([]integration.InventoryLevel, 0, len(inventoryItemIDs))

	for start := 0; start < len(inventoryItemIDs); start += shopifyMaxInventoryItemIDs {
		end := min(start+shopifyMaxInventoryItemIDs, len(inventoryItemIDs))

		ids := make([]string, 0, end-start)
		for _, id := range inventoryItemIDs[start:end] {
			ids = append(ids, strconv.FormatInt(id, 10))
		}

		query := url.Values{}
		query.Set("inventory_item_ids", strings.Join(ids, ","))
		query.Set("limit", strconv.Itoa(ShopifyMaxPageSize))

		var resp ShopifyInventoryLevelListResponse
		if err := a.doJSON(ctx, http.MethodGet, "/inventory_levels.json", query, nil, &resp); err != nil {
			return nil, err
		}

		for _, level := range resp.InventoryLevels {
			levels = append(levels, integration.InventoryLevel{
				InventoryItemID: level.InventoryItemID,
				LocationID:      level.LocationID,
				Available:       level.Available,
			})
		}
	}

	return levels, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// ListOrdersSince returns one page of orders updated after since
func (a *ShopifyAdapter) ListOrdersSince(ctx context.Context, since *time.Time, limit int) ([]integration.StorefrontOrder, error) {
	if limit <= 0 || limit > ShopifyMaxPageSize {
		limit = ShopifyMaxPageSize
	}

	query := url.Values{}
	query.Set("status", "any")
	query.Set("limit", strconv.Itoa(limit))
	if since != nil {
		query.Set("updated_at_min", since.UTC().Format(time.RFC3339))
	}

	var resp ShopifyOrderListResponse
	if err := a.doJSON(ctx, http.MethodGet, "/orders.json", query, nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]integration.StorefrontOrder, 0, len(resp.Orders))
	for i := range resp.Orders {
		orders = append(orders, convertShopifyOrder(&resp.Orders[i]))
	}
	return orders, nil
}

// ListFulfillments returns the fulfillments of a storefront order
func (a *ShopifyAdapter) ListFulfillments(ctx context.Context, orderID int64) ([]integration.Fulfillment, error) {
	path := fmt.Sprintf("/orders/%d/fulfillments.json", orderID)

	var resp ShopifyFulfillmentListResponse
	if err := a.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}

	fulfillments := make([]integration.Fulfillment, 0, len(resp.Fulfillments))
	for _, f := range resp.Fulfillments {
		fulfillments = append(fulfillments, integration.Fulfillment{
			ID:              f.ID,
			OrderID:         f.OrderID,
			Status:          f.Status,
			TrackingCompany: stringValue(f.TrackingCompany),
			TrackingNumber:  stringValue(f.TrackingNumber),
			TrackingURL:     stringValue(f.TrackingURL),
		})
	}
	return fulfillments, nil
}

// CreateOrder creates a paid storefront order from a draft
func (a *ShopifyAdapter) CreateOrder(ctx context.Context, draft *integration.StorefrontOrderDraft) (*integration.CreatedOrder, error) {
	if draft == nil {
		return nil, integration.ErrOrderSyncInvalidOrder
	}

	body := ShopifyCreateOrderRequest{Order: convertOrderDraft(draft)}

	var resp ShopifyCreateOrderResponse
	if err := a.doJSON(ctx, http.MethodPost, "/orders.json", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil || resp.Order.ID == 0 {
		return nil, fmt.Errorf("%w: order missing from create response", integration.ErrPlatformInvalidResponse)
	}

	return &integration.CreatedOrder{
		ID:   resp.Order.ID,
		Name: resp.Order.Name,
	}, nil
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

// doJSON sends a JSON request and decodes the JSON response into out
func (a *ShopifyAdapter) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("shopify: failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	respBody, err := a.doRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: shopify: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return nil
}

func (a *ShopifyAdapter) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("shopify: rate limiter: %w", err)
	}

	endpoint := a.config.AdminURL(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxShopifyResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(shopifyPlatform, req, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func convertShopifyProduct(p *ShopifyProduct) integration.CatalogItem {
	item := integration.CatalogItem{
		ID:          p.ID,
		Title:       p.Title,
		BodyHTML:    stringValue(p.BodyHTML),
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Variants:    make([]integration.CatalogVariant, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		item.Variants = append(item.Variants, integration.CatalogVariant{
			ID:              v.ID,
			ProductID:       v.ProductID,
			Title:           v.Title,
			SKU:             stringValue(v.SKU),
			Barcode:         stringValue(v.Barcode),
			Price:           v.Price,
			InventoryItemID: v.InventoryItemID,
		})
	}
	return item
}

func convertShopifyOrder(o *ShopifyOrder) integration.StorefrontOrder {
	return integration.StorefrontOrder{
		ID:                o.ID,
		Name:              o.Name,
		Email:             stringValue(o.Email),
		Tags:              o.Tags,
		Note:              stringValue(o.Note),
		FulfillmentStatus: stringValue(o.FulfillmentStatus),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func convertOrderDraft(draft *integration.StorefrontOrderDraft) ShopifyNewOrder {
	order := ShopifyNewOrder{
		Email:              draft.Email,
		LineItems:          make([]ShopifyNewLineItem, 0, len(draft.LineItems)),
		ShippingAddress:    convertAddressToShopify(draft.ShippingAddress),
		BillingAddress:     convertAddressToShopify(draft.BillingAddress),
		FinancialStatus:    draft.FinancialStatus,
		Currency:           draft.Currency,
		Tags:               strings.Join(draft.Tags, ", "),
		Note:               draft.Note,
		SendReceipt:        false,
		InventoryBehaviour: shopifyInventoryBehaviour,
	}
	for _, line := range draft.LineItems {
		order.LineItems = append(order.LineItems, ShopifyNewLineItem{
			Title:    line.Title,
			SKU:      line.SKU,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}
	return order
}

func convertAddressToShopify(addr *integration.Address) *ShopifyAddress {
	if addr == nil {
		return nil
	}
	return &ShopifyAddress{
		FirstName:   addr.FirstName,
		LastName:    addr.LastName,
		Company:     addr.Company,
		Address1:    addr.Address1,
		Address2:    addr.Address2,
		City:        addr.City,
		Province:    addr.Province,
		Zip:         addr.Zip,
		Country:     addr.Country,
		CountryCode: addr.CountryCode,
		Phone:       addr.Phone,
	}
}

// Ensure ShopifyAdapter implements the storefront ports
var (
	_ integration.CatalogSource = (*ShopifyAdapter)(nil)
	_ integration.OrderSink     = (*ShopifyAdapter)(nil)
)
