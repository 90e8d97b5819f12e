package constants

import "errors"

// Configuration errors.
var (
	ErrAPIKeyNotConfigured = errors.New("no API key configured, use 'stripe login' or set STRIPE_API_KEY")
	ErrEmptyAPIKey         = errors.New("API key must not be empty")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
)

// Request strategy errors.
var (
	ErrConflictingStrategyFlags = errors.New("--idempotency-key and --resume cannot be combined with each other or with --retries/--backoff")
	ErrInvalidRetryCount        = errors.New("--retries must be between 1 and 5")
	ErrUnknownKeystore          = errors.New("unknown key store, expected bolt, nats or memory")
)

// Input validation errors.
var (
	ErrAmountRequired   = errors.New("--amount must be a positive integer in the currency's smallest unit")
	ErrCurrencyRequired = errors.New("--currency is required")
)
