package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// ErrorKind discriminates the failures surfaced by the client.
type ErrorKind string

// Error kinds.
const (
	// ErrorKindSerialize: the form body could not be produced. Never retried.
	ErrorKindSerialize ErrorKind = "serialize"
	// ErrorKindTransport: connection or I/O failure before a response arrived.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindTimeout: no response within the client's request timeout.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindDecode: the response body did not match the declared result type. Never retried.
	ErrorKindDecode ErrorKind = "decode"
	// ErrorKindAPI: Stripe returned an error body with an HTTP status >= 400.
	ErrorKindAPI ErrorKind = "api"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrSerialize = errors.New("stripe: serialize error")
	ErrTransport = errors.New("stripe: transport error")
	ErrTimeout   = errors.New("stripe: timeout")
	ErrDecode    = errors.New("stripe: decode error")
	ErrAPI       = errors.New("stripe: api error")
)

// Static errors for err113 compliance.
var (
	ErrAPIKeyRequired        = errors.New("stripe: API key is required")
	ErrConfigRequired        = errors.New("stripe: config is required")
	ErrInvalidIdempotencyKey = errors.New("stripe: idempotency key must be between 1 and 255 characters")
	ErrInvalidAccountID      = errors.New("stripe: account id must start with " + constants.AccountIDPrefix)
	ErrInvalidApplicationID  = errors.New("stripe: application id must start with " + constants.ApplicationIDPrefix)
	ErrInvalidPage           = errors.New("stripe: list page reported has_more with no data")
	ErrUnsupportedMethod     = errors.New("stripe: unsupported HTTP method")
	ErrInterceptorAborted    = errors.New("stripe: interceptor aborted the request")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindSerialize: ErrSerialize,
	ErrorKindTransport: ErrTransport,
	ErrorKindTimeout:   ErrTimeout,
	ErrorKindDecode:    ErrDecode,
	ErrorKindAPI:       ErrAPI,
}

// ErrorType is the `type` field of a Stripe error body.
type ErrorType string

// Error types returned by the API.
const (
	ErrorTypeAPI            ErrorType = "api_error"
	ErrorTypeCard           ErrorType = "card_error"
	ErrorTypeIdempotency    ErrorType = "idempotency_error"
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

// ErrorCategory is the discriminant used for retry decisions and matching.
type ErrorCategory string

// Error categories. The first four mirror ErrorType; the rest are derived from
// the HTTP status or the error code.
const (
	CategoryAPI                    ErrorCategory = "api_error"
	CategoryCard                   ErrorCategory = "card_error"
	CategoryIdempotency            ErrorCategory = "idempotency_error"
	CategoryInvalidRequest         ErrorCategory = "invalid_request_error"
	CategoryRateLimit              ErrorCategory = "rate_limit"
	CategoryLockTimeout            ErrorCategory = "lock_timeout"
	CategoryAuthentication         ErrorCategory = "authentication"
	CategoryPermission             ErrorCategory = "permission"
	CategoryNotFound               ErrorCategory = "not_found"
	CategoryCheckoutSessionExpired ErrorCategory = "checkout_session_expired"
)

// Error codes with special handling.
const (
	ErrorCodeRateLimit              = "rate_limit"
	ErrorCodeLockTimeout            = "lock_timeout"
	ErrorCodeResourceMissing        = "resource_missing"
	ErrorCodeCheckoutSessionExpired = "checkout_session_expired"
	ErrorCodeCardDeclined           = "card_declined"
)

// APIError is the structured error body Stripe returns with 4xx and 5xx responses.
type APIError struct {
	HTTPStatusCode int       `json:"-"`
	RequestID      string    `json:"-"`
	ShouldRetry    *bool     `json:"-"`
	Type           ErrorType `json:"type"`
	Code           string    `json:"code,omitempty"`
	Message        string    `json:"message,omitempty"`
	Param          string    `json:"param,omitempty"`
	DeclineCode    string    `json:"decline_code,omitempty"`
	DocURL         string    `json:"doc_url,omitempty"`
	RequestLogURL  string    `json:"request_log_url,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%s (status %d)", e.Category(), e.HTTPStatusCode)

	if e.Code != "" {
		fmt.Fprintf(&builder, " code=%s", e.Code)
	}

	if e.Param != "" {
		fmt.Fprintf(&builder, " param=%s", e.Param)
	}

	if e.Message != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Message)
	}

	return builder.String()
}

// Category derives the discriminant from the status, code and type.
func (e *APIError) Category() ErrorCategory {
	switch {
	case e.HTTPStatusCode == constants.HTTPStatusTooManyRequests && e.Code != ErrorCodeLockTimeout,
		e.Code == ErrorCodeRateLimit:
		return CategoryRateLimit
	case e.Code == ErrorCodeLockTimeout:
		return CategoryLockTimeout
	case e.Code == ErrorCodeCheckoutSessionExpired:
		return CategoryCheckoutSessionExpired
	case e.HTTPStatusCode == constants.HTTPStatusUnauthorized:
		return CategoryAuthentication
	case e.HTTPStatusCode == constants.HTTPStatusForbidden:
		return CategoryPermission
	case e.HTTPStatusCode == constants.HTTPStatusNotFound:
		return CategoryNotFound
	case e.Type == "":
		return CategoryAPI
	default:
		return ErrorCategory(e.Type)
	}
}

// Retryable reports whether reissuing the call with the same idempotency key
// is safe and may succeed. A Stripe-Should-Retry header overrides the table.
func (e *APIError) Retryable() bool {
	if e.ShouldRetry != nil {
		return *e.ShouldRetry
	}

	switch e.Category() {
	case CategoryRateLimit, CategoryLockTimeout:
		return true
	case CategoryAPI:
		return e.HTTPStatusCode >= constants.HTTPStatusInternalServerError
	default:
		return false
	}
}

// Error is the single error type returned by every client operation.
type Error struct {
	Kind           ErrorKind
	HTTPStatusCode int
	// API is set when Kind is ErrorKindAPI.
	API *APIError
	// Err is the underlying cause for client-side kinds.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.API != nil {
		return "stripe: " + e.API.Error()
	}

	if e.Err != nil {
		return fmt.Sprintf("stripe: %s error: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("stripe: %s error", e.Kind)
}

// Unwrap exposes the API error or the underlying cause.
func (e *Error) Unwrap() error {
	if e.API != nil {
		return e.API
	}

	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]

	return ok && sentinel == target
}

// Retryable reports the retry disposition of the error.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case ErrorKindTimeout:
		return true
	case ErrorKindTransport:
		return !errors.Is(e.Err, context.Canceled) &&
			!errors.Is(e.Err, context.DeadlineExceeded) &&
			!errors.Is(e.Err, ErrInterceptorAborted)
	case ErrorKindAPI:
		return e.API != nil && e.API.Retryable()
	default:
		return false
	}
}

// Message returns a human readable description for operators.
func (e *Error) Message() string {
	if e.API != nil && e.API.Message != "" {
		return e.API.Message
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Kind)
}

// RequestLogURL returns the dashboard request log link Stripe attached to the error, if any.
func (e *Error) RequestLogURL() string {
	if e.API == nil {
		return ""
	}

	return e.API.RequestLogURL
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewSerializeError wraps a form encoding failure.
func NewSerializeError(err error) *Error {
	return newError(ErrorKindSerialize, err)
}

// NewTransportError wraps a connection or I/O failure.
func NewTransportError(err error) *Error {
	return newError(ErrorKindTransport, err)
}

// NewTimeoutError wraps a client-side timeout.
func NewTimeoutError(err error) *Error {
	return newError(ErrorKindTimeout, err)
}

// NewDecodeError wraps a JSON decoding failure of a successful response.
func NewDecodeError(status int, err error) *Error {
	return &Error{Kind: ErrorKindDecode, HTTPStatusCode: status, Err: err}
}

// NewAPIError wraps an API error body.
func NewAPIError(apiErr *APIError) *Error {
	return &Error{Kind: ErrorKindAPI, HTTPStatusCode: apiErr.HTTPStatusCode, API: apiErr}
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// ParseAPIError builds the API error for a response with status >= 400. Bodies
// that are not a Stripe error envelope still produce an APIError carrying the
// status, so 5xx responses from proxies stay retryable.
func ParseAPIError(status int, header http.Header, body []byte) *APIError {
	var envelope errorEnvelope

	apiErr := &APIError{}

	err := json.Unmarshal(body, &envelope)
	if err == nil && envelope.Error != nil {
		apiErr = envelope.Error
	} else {
		apiErr.Type = ErrorTypeAPI
		apiErr.Message = strings.TrimSpace(string(body))

		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}

	apiErr.HTTPStatusCode = status

	if header != nil {
		apiErr.RequestID = header.Get(constants.HeaderRequestID)

		shouldRetry, parseErr := strconv.ParseBool(header.Get(constants.HeaderShouldRetry))
		if parseErr == nil {
			apiErr.ShouldRetry = &shouldRetry
		}
	}

	return apiErr
}

// AsAPIError extracts the API error from err.
func AsAPIError(err error) (*APIError, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsRetryable reports whether err is a client error with a retryable disposition.
func IsRetryable(err error) bool {
	stripeErr := &Error{}
	if errors.As(err, &stripeErr) {
		return stripeErr.Retryable()
	}

	return false
}

func hasCategory(err error, category ErrorCategory) bool {
	apiErr, ok := AsAPIError(err)

	return ok && apiErr.Category() == category
}

// IsCardError checks if the error is a card_error.
func IsCardError(err error) bool {
	return hasCategory(err, CategoryCard)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasCategory(err, CategoryNotFound)
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	return hasCategory(err, CategoryRateLimit)
}

// IsAuthenticationError checks if the API key was rejected.
func IsAuthenticationError(err error) bool {
	return hasCategory(err, CategoryAuthentication)
}
