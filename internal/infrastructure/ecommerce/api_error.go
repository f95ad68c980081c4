package ecommerce

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// maxErrorBodySize caps the response body kept on an APIError
const maxErrorBodySize = 2048

// APIError is returned when a platform answers with a non-2xx status.
// It unwraps to the matching integration sentinel.
type APIError struct {
	// Platform is the platform that answered (shopify, mirakl)
	Platform string
	// Method is the HTTP method of the failed request
	Method string
	// Path is the request path
	Path string
	// StatusCode is the HTTP status code
	StatusCode int
	// Body is the (truncated) response body
	Body string
}

func newAPIError(platform string, req *http.Request, statusCode int, body []byte) *APIError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodySize {
		text = text[:maxErrorBodySize]
	}
	return &APIError{
		Platform:   platform,
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: statusCode,
		Body:       text,
	}
}

// Error implements error
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s %s: HTTP %d", e.Platform, e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: HTTP %d: %s", e.Platform, e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap maps the status code to an integration sentinel
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return integration.ErrPlatformAuthFailed
	case e.StatusCode == http.StatusTooManyRequests:
		return integration.ErrPlatformRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return integration.ErrPlatformUnavailable
	default:
		return integration.ErrPlatformRequestFailed
	}
}

// IsAPIStatus reports whether err is an APIError with the given status code
func IsAPIStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}
