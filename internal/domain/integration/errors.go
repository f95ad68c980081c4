package integration

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	// Order sync errors
	ErrOrderSyncInvalidOrder = errors.New("integration: invalid order for sync")
	ErrOrderSyncCreateFailed = errors.New("integration: storefront order creation failed")

	// Offer sync errors
	ErrOfferSyncEmptyBatch = errors.New("integration: offer batch is empty")

	// Tracking sync errors
	ErrCorrelationNotFound = errors.New("integration: marketplace order id not recoverable")

	// Engine errors
	ErrUnknownSyncType    = errors.New("integration: unknown sync type")
	ErrSyncAlreadyRunning = errors.New("integration: sync already running")
)
