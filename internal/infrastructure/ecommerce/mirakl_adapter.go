package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

const (
	// maxMiraklResponseSize limits the response body size to prevent memory exhaustion
	maxMiraklResponseSize = 10 * 1024 * 1024 // 10MB max response

	miraklPlatform = "mirakl"
	// miraklDateFormat is the ISO 8601 layout accepted by date filters
	miraklDateFormat = "2006-01-02T15:04:05Z"
)

// MiraklAdapter implements the marketplace port on the Mirakl shop API
type MiraklAdapter struct {
	config     *MiraklConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewMiraklAdapter creates a new Mirakl adapter with the given configuration
func NewMiraklAdapter(config *MiraklConfig) (*MiraklAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MiraklAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}, nil
}

// ---------------------------------------------------------------------------
// Offer Operations
// ---------------------------------------------------------------------------

// ImportOffers uploads an offer file (OF01). The file is sent as a
// multipart "file" part with content type text/csv.
func (a *MiraklAdapter) ImportOffers(ctx context.Context, csv []byte, mode integration.ImportMode) (*integration.ImportResult, error) {
	if len(csv) == 0 {
		return nil, integration.ErrOfferSyncEmptyBatch
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, miraklOfferFileName))
	header.Set("Content-Type", "text/csv")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("mirakl: failed to create file part: %w", err)
	}
	if _, err := part.Write(csv); err != nil {
		return nil, fmt.Errorf("mirakl: failed to write file part: %w", err)
	}
	if mode != "" {
		if err := writer.WriteField("import_mode", string(mode)); err != nil {
			return nil, fmt.Errorf("mirakl: failed to write import mode: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("mirakl: failed to close multipart body: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/api/offers/imports", a.shopQuery(), &body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var resp MiraklOfferImportResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: mirakl: %v", integration.ErrPlatformInvalidResponse, err)
	}

	return &integration.ImportResult{ImportID: resp.ImportID}, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// ListOrders returns every order created after since (OR11), following
// offset pagination until the reported total is reached
func (a *MiraklAdapter) ListOrders(ctx context.Context, since *time.Time) ([]integration.MarketplaceOrder, error) {
	orders := make([]integration.MarketplaceOrder, 0)

	for offset := 0; ; {
		query := a.shopQuery()
		query.Set("max", strconv.Itoa(MiraklMaxPageSize))
		query.Set("offset", strconv.Itoa(offset))
		if since != nil {
			query.Set("start_date", since.UTC().Format(miraklDateFormat))
		}
		if len(a.config.OrderStates) > 0 {
			query.Set("order_state_codes", strings.Join(a.config.OrderStates, ","))
		}

		respBody, err := a.doRequest(ctx, http.MethodGet, "/api/orders", query, nil, "")
		if err != nil {
			return nil, err
		}

		var resp MiraklOrderListResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("%w: mirakl: %v", integration.ErrPlatformInvalidResponse, err)
		}

		for i := range resp.Orders {
			orders = append(orders, convertMiraklOrder(&resp.Orders[i]))
		}

		offset += len(resp.Orders)
		if len(resp.Orders) == 0 || offset >= resp.TotalCount {
			break
		}
	}

	return orders, nil
}

// UpdateTracking sets the tracking information of an order (OR23)
func (a *MiraklAdapter) UpdateTracking(ctx context.Context, orderID string, update integration.TrackingUpdate) error {
	if orderID == "" {
		return integration.ErrOrderSyncInvalidOrder
	}

	carrierCode := update.CarrierCode
	if carrierCode == "" {
		carrierCode = integration.CarrierCodeOther
	}
	payload, err := json.Marshal(MiraklTrackingRequest{
		CarrierCode:    carrierCode,
		CarrierName:    update.CarrierName,
		CarrierURL:     update.TrackingURL,
		TrackingNumber: update.TrackingNumber,
	})
	if err != nil {
		return fmt.Errorf("mirakl: failed to marshal tracking: %w", err)
	}

	path := "/api/orders/" + url.PathEscape(orderID) + "/tracking"
	_, err = a.doRequest(ctx, http.MethodPut, path, a.shopQuery(), bytes.NewReader(payload), "application/json")
	if IsAPIStatus(err, http.StatusNotFound) {
		// The id decoded from the storefront order names no marketplace order
		return fmt.Errorf("%w: mirakl order %q: %w", integration.ErrCorrelationNotFound, orderID, err)
	}
	return err
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

func (a *MiraklAdapter) shopQuery() url.Values {
	query := url.Values{}
	if a.config.ShopID != "" {
		query.Set("shop_id", a.config.ShopID)
	}
	return query
}

func (a *MiraklAdapter) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("mirakl: rate limiter: %w", err)
	}

	endpoint := a.config.APIBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("mirakl: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", a.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxMiraklResponseSize))
	if err != nil {
		return nil, fmt.Errorf("mirakl: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(miraklPlatform, req, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func convertMiraklOrder(o *MiraklOrder) integration.MarketplaceOrder {
	order := integration.MarketplaceOrder{
		ID:        o.OrderID,
		State:     o.OrderState,
		Currency:  o.CurrencyISOCode,
		CreatedAt: o.CreatedDate,
		Lines:     make([]integration.MarketplaceOrderLine, 0, len(o.OrderLines)),
	}

	order.CustomerEmail = stringValue(o.CustomerNotificationEmail)
	if c := o.Customer; c != nil {
		order.CustomerFirstName = c.FirstName
		order.CustomerLastName = c.LastName
		if order.CustomerEmail == "" {
			order.CustomerEmail = stringValue(c.Email)
		}
		order.ShippingAddress = convertMiraklAddress(c.ShippingAddress)
		order.BillingAddress = convertMiraklAddress(c.BillingAddress)
	}

	for _, line := range o.OrderLines {
		order.Lines = append(order.Lines, integration.MarketplaceOrderLine{
			ID:           line.OrderLineID,
			OfferSKU:     line.OfferSKU,
			ProductTitle: stringValue(line.ProductTitle),
			Quantity:     line.Quantity,
			Price:        line.Price,
		})
	}

	return order
}

func convertMiraklAddress(addr *MiraklAddress) *integration.MarketplaceAddress {
	if addr == nil {
		return nil
	}
	return &integration.MarketplaceAddress{
		FirstName:      addr.FirstName,
		LastName:       addr.LastName,
		Company:        stringValue(addr.Company),
		Street1:        addr.Street1,
		Street2:        stringValue(addr.Street2),
		City:           addr.City,
		State:          stringValue(addr.State),
		ZipCode:        addr.ZipCode,
		Country:        addr.Country,
		CountryISOCode: addr.CountryISOCode,
		Phone:          stringValue(addr.Phone),
	}
}

// Ensure MiraklAdapter implements the marketplace port
var _ integration.MarketplaceSink = (*MiraklAdapter)(nil)
