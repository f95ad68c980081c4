package ecommerce

import (
	"errors"
	"strings"
)

// ShopifyConfig holds configuration for Shopify Admin REST API integration
type ShopifyConfig struct {
	// ShopDomain is the shop's myshopify domain (e.g. my-shop.myshopify.com)
	ShopDomain string
	// AccessToken is the Admin API access token of the custom app
	AccessToken string
	// APIVersion is the Admin API version (e.g. 2024-01)
	APIVersion string
	// APIBaseURL overrides https://<ShopDomain>, mainly for tests
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RequestsPerSecond is the sustained request rate
	RequestsPerSecond float64
	// Burst is the leaky bucket size
	Burst int
}

const (
	// DefaultShopifyAPIVersion is the Admin API version used when none is configured
	DefaultShopifyAPIVersion = "2024-01"
	// ShopifyMaxPageSize is the largest page the Admin API returns
	ShopifyMaxPageSize = 250
	// shopifyMaxInventoryItemIDs is the largest inventory_item_ids filter accepted per call
	shopifyMaxInventoryItemIDs = 50
)

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(shopDomain, accessToken string) *ShopifyConfig {
	return &ShopifyConfig{
		ShopDomain:        shopDomain,
		AccessToken:       accessToken,
		APIVersion:        DefaultShopifyAPIVersion,
		TimeoutSeconds:    30,
		RequestsPerSecond: 2,
		Burst:             40,
	}
}

// Validate validates the Shopify configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if c.ShopDomain == "" && c.APIBaseURL == "" {
		return ErrShopifyConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultShopifyAPIVersion
	}
	if c.APIBaseURL == "" {
		domain := strings.TrimPrefix(strings.TrimPrefix(c.ShopDomain, "https://"), "http://")
		c.APIBaseURL = "https://" + strings.TrimSuffix(domain, "/")
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst <= 0 {
		c.Burst = 40
	}
	return nil
}

// AdminURL returns the full Admin API URL for a resource path (e.g. /products.json)
func (c *ShopifyConfig) AdminURL(path string) string {
	return c.APIBaseURL + "/admin/api/" + c.APIVersion + path
}
