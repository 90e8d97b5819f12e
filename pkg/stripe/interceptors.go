package stripe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// OutboundRequest is one physical attempt as seen by interceptors. Headers may
// be modified; the credential header is never exposed here.
type OutboundRequest struct {
	Method   string
	Path     string
	Attempt  int
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// RequestInterceptor is called before every physical attempt. Returning an
// error aborts the call without retrying.
type RequestInterceptor func(ctx context.Context, req *OutboundRequest) error

// ResponseInterceptor is called after every physical attempt, including those
// that failed at the transport level (resp.Error is set).
type ResponseInterceptor func(ctx context.Context, req *OutboundRequest, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// Len returns the number of interceptors of both kinds.
func (c *InterceptorChain) Len() int {
	if c == nil {
		return 0
	}

	return len(c.requestInterceptors) + len(c.responseInterceptors)
}

// ExecuteRequestInterceptors runs all request interceptors in registration order.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *OutboundRequest) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors in registration order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *OutboundRequest, resp *Response) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs every attempt at debug level.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *OutboundRequest) error {
		logger.Debug("Stripe Request", map[string]interface{}{
			"method":          req.Method,
			"path":            req.Path,
			"attempt":         req.Attempt,
			"idempotency_key": req.Headers.Get(constants.HeaderIdempotencyKey),
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses, at error level for failed attempts.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *OutboundRequest, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"attempt":     req.Attempt,
			"status_code": resp.StatusCode,
			"request_id":  resp.RequestID(),
		}

		if resp.Error != nil || resp.StatusCode >= constants.HTTPStatusBadRequest {
			if resp.Error != nil {
				fields["error"] = resp.Error.Error()
			}

			logger.Error("Stripe Response Error", fields)
		} else {
			logger.Debug("Stripe Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests. The credential header
// cannot be overridden this way.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *OutboundRequest) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			if strings.EqualFold(key, constants.HeaderAuthorization) {
				continue
			}

			req.Headers.Set(key, value)
		}

		return nil
	}
}
