package constants

import "time"

// Library identity.
const (
	// LibraryName is the name advertised in the User-Agent header.
	LibraryName = "stripe-client-go"

	// LibraryVersion is the semantic version of this library.
	LibraryVersion = "1.4.0"

	// APIVersion is the Stripe API version pinned by this build. It is sent on every request.
	APIVersion = "2024-06-20"

	// DefaultAPIBase is the public Stripe API endpoint.
	DefaultAPIBase = "https://api.stripe.com"
)

// Request and response header names.
const (
	HeaderAuthorization     = "Authorization"
	HeaderStripeVersion     = "Stripe-Version"
	HeaderStripeAccount     = "Stripe-Account"
	HeaderStripeApplication = "Stripe-Application"
	HeaderIdempotencyKey    = "Idempotency-Key"
	HeaderUserAgent         = "User-Agent"
	HeaderAccept            = "Accept"
	HeaderContentType       = "Content-Type"
	HeaderRequestID         = "Request-Id"
	HeaderShouldRetry       = "Stripe-Should-Retry"

	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// HTTP and network timeouts.
const (
	// DefaultConnectTimeout bounds TCP/TLS connection establishment.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultRequestTimeout bounds one physical attempt, body included.
	DefaultRequestTimeout = 80 * time.Second

	// ShortHTTPTimeout is used by the CLI for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry tuning.
const (
	// MaxAttempts bounds every strategy's attempt count.
	MaxAttempts = 5

	// DefaultRetryAttempts is the attempt count the CLI uses for --backoff without --retries.
	DefaultRetryAttempts = 3

	// RetryFixedDelay is the delay between attempts of the Retry strategy.
	RetryFixedDelay = 250 * time.Millisecond

	// BackoffBaseDelay is the first delay of the ExponentialBackoff strategy.
	BackoffBaseDelay = 500 * time.Millisecond

	// BackoffMaxDelay caps a single ExponentialBackoff delay before jitter.
	BackoffMaxDelay = 8 * time.Second

	// BackoffJitter is the relative jitter applied to backoff delays.
	BackoffJitter = 0.25

	// ExponentialBackoffBase is the base for exponential backoff.
	ExponentialBackoffBase = 2
)

// Idempotency key limits.
const (
	MinIdempotencyKeyLength = 1
	MaxIdempotencyKeyLength = 255
)

// Pagination limits.
const (
	// MinPageLimit and MaxPageLimit bound the limit parameter of list endpoints.
	MinPageLimit = 1
	MaxPageLimit = 100

	// DefaultPageSize is the page size the CLI asks for.
	DefaultPageSize = 10
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch executions.
	DefaultConcurrencyLimit = 3
)

// Identifier prefixes.
const (
	AccountIDPrefix     = "acct_"
	ApplicationIDPrefix = "ca_"
)

// HTTP status codes commonly used.
const (
	HTTPStatusBadRequest          = 400
	HTTPStatusUnauthorized        = 401
	HTTPStatusForbidden           = 403
	HTTPStatusNotFound            = 404
	HTTPStatusTooManyRequests     = 429
	HTTPStatusInternalServerError = 500
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0o750

	// ConfigFilePerm is the permission for configuration and key store files.
	ConfigFilePerm = 0o600
)

// Format constants.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// SecretVisiblePrefix is how many leading characters of a secret the CLI shows.
	SecretVisiblePrefix = 8
)

// Boolean string constants.
const (
	BooleanTrue  = "true"
	BooleanFalse = "false"
)

// MaxFormDepth bounds nesting in the form encoder.
const MaxFormDepth = 32
