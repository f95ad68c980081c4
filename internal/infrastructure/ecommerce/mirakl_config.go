package ecommerce

import (
	"errors"
	"strings"
)

// MiraklConfig holds configuration for the Mirakl seller (shop) API
type MiraklConfig struct {
	// APIBaseURL is the operator instance URL (e.g. https://marketplace.mirakl.net)
	APIBaseURL string
	// APIKey is the shop API key sent in the Authorization header
	APIKey string
	// ShopID selects the shop when the key has access to several, optional
	ShopID string
	// OrderStates filters pulled orders by state code, empty for all states
	OrderStates []string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RequestsPerSecond is the sustained request rate
	RequestsPerSecond float64
	// Burst is the number of requests allowed above the rate
	Burst int
}

const (
	// MiraklMaxPageSize is the largest page size of the order list endpoint
	MiraklMaxPageSize = 100
	// miraklOfferFileName is the file name of the offer import part
	miraklOfferFileName = "offers.csv"
)

// Errors for Mirakl configuration
var (
	ErrMiraklConfigMissingBaseURL = errors.New("mirakl: API base URL is required")
	ErrMiraklConfigMissingAPIKey  = errors.New("mirakl: API key is required")
)

// NewMiraklConfig creates a new Mirakl configuration with defaults
func NewMiraklConfig(baseURL, apiKey string) *MiraklConfig {
	return &MiraklConfig{
		APIBaseURL:        baseURL,
		APIKey:            apiKey,
		TimeoutSeconds:    60,
		RequestsPerSecond: 1,
		Burst:             5,
	}
}

// Validate validates the Mirakl configuration and fills defaults
func (c *MiraklConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMiraklConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrMiraklConfigMissingAPIKey
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 1
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	return nil
}
