package stripe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/form"
)

// Call is the untyped, already encoded form of a Request that a Backend executes.
type Call struct {
	Method Method
	Path   string
	Params form.Pairs
	// Strategy overrides the client default when set.
	Strategy *RequestStrategy
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Attempts is the number of physical attempts the call took.
	Attempts int
	Error    error
}

// RequestID returns the Request-Id header Stripe assigns to every response.
func (r *Response) RequestID() string {
	if r == nil || r.Headers == nil {
		return ""
	}

	return r.Headers.Get(constants.HeaderRequestID)
}

// Backend executes encoded calls, including retries, and returns the body of
// a successful response or an *Error.
type Backend interface {
	Call(ctx context.Context, call *Call) (*Response, error)
}

// AccountID scopes requests to a connected account (acct_…).
type AccountID string

// ParseAccountID validates the acct_ prefix.
func ParseAccountID(id string) (AccountID, error) {
	if !strings.HasPrefix(id, constants.AccountIDPrefix) || len(id) == len(constants.AccountIDPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountID, id)
	}

	return AccountID(id), nil
}

// ApplicationID identifies a Connect platform application (ca_…).
type ApplicationID string

// ParseApplicationID validates the ca_ prefix.
func ParseApplicationID(id string) (ApplicationID, error) {
	if !strings.HasPrefix(id, constants.ApplicationIDPrefix) || len(id) == len(constants.ApplicationIDPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidApplicationID, id)
	}

	return ApplicationID(id), nil
}

// Client holds credentials, scoping headers, the default strategy and the
// shared connection pool. Every With method returns a new handle that shares
// the pool with its parent; the parent is never modified.
//
// Go has no generic methods, so typed calls go through Execute:
//
//	customer, err := stripe.Execute(ctx, client, stripe.RetrieveCustomer("cus_123"))
type Client interface {
	Backend

	WithStrategy(strategy RequestStrategy) Client
	WithClientID(id ApplicationID) Client
	WithAccountID(id AccountID) Client
	WithAPIBase(base string) Client

	DefaultStrategy() RequestStrategy
	AccountID() AccountID
	ClientID() ApplicationID
	APIBase() string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a stripe.Client.
//
// # Timeouts and retries
//
// ConnectTimeout bounds connection establishment and RequestTimeout bounds a
// single physical attempt. A timeout is a retryable failure; whether it is
// retried depends on the strategy. Cancelling the context passed to a call
// abandons the in-flight attempt and schedules no further ones. The server may
// still settle the abandoned attempt; the idempotency key of a cancelled call
// is not reused by the library.
type Config struct {
	// APIKey is the secret key sent as a bearer token. Required. Never logged.
	APIKey string
	// APIBase overrides the API endpoint, mostly for tests against a mock server.
	APIBase string
	// AccountID adds Stripe-Account to every request when set.
	AccountID AccountID
	// ApplicationID adds Stripe-Application to every request when set.
	ApplicationID ApplicationID
	// Strategy is the default strategy for calls that do not carry one. Defaults to Once.
	Strategy *RequestStrategy
	// ConnectTimeout defaults to constants.DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// RequestTimeout defaults to constants.DefaultRequestTimeout.
	RequestTimeout time.Duration
	// HTTPClient replaces the pooled client built from the timeouts above.
	HTTPClient *http.Client
	// UserAgentSuffix is appended to the fixed User-Agent, e.g. "my-app/1.2".
	UserAgentSuffix string
	// Logger receives per-attempt logs when Debug is set, and warnings otherwise.
	Logger Logger
	// Debug enables verbose per-attempt logging.
	Debug bool
	// RequestInterceptors run before every physical attempt.
	RequestInterceptors []RequestInterceptor
	// ResponseInterceptors run after every physical attempt.
	ResponseInterceptors []ResponseInterceptor
}

// String returns a pointer to v, for optional parameters.
func String(v string) *string {
	return &v
}

// Int64 returns a pointer to v, for optional parameters.
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v, for optional parameters.
func Bool(v bool) *bool {
	return &v
}

// Float64 returns a pointer to v, for optional parameters.
func Float64(v float64) *float64 {
	return &v
}
