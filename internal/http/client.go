// Package http executes Stripe calls: it builds the wire request, runs the
// retry loop dictated by the call's strategy and classifies failures.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/form"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// Request is one logical call. All of its attempts share the same headers,
// including the idempotency key.
type Request struct {
	Method   stripe.Method
	Path     string
	Params   form.Pairs
	Headers  map[string]string
	Strategy stripe.RequestStrategy
}

// Client is the HTTP executor. Clients derived with WithBaseURL share the
// connection pool of their parent.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	logger         stripe.Logger
	debug          bool
	userAgent      string
	connectTimeout time.Duration
	requestTimeout time.Duration
	interceptors   *stripe.InterceptorChain
}

// Option configures the HTTP client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger stripe.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables per-attempt debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithHTTPClient replaces the pooled HTTP client. Timeouts configured on it
// are used as is.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithConnectTimeout bounds connection establishment.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.connectTimeout = timeout
		}
	}
}

// WithRequestTimeout bounds a single attempt, including reading the body.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithUserAgent appends suffix to the fixed User-Agent.
func WithUserAgent(suffix string) Option {
	return func(c *Client) {
		if suffix != "" {
			c.userAgent = DefaultUserAgent() + " " + suffix
		}
	}
}

// WithInterceptors runs chain around every attempt.
func WithInterceptors(chain *stripe.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// DefaultUserAgent names the library and its version.
func DefaultUserAgent() string {
	return fmt.Sprintf("%s/%s", constants.LibraryName, constants.LibraryVersion)
}

// NewClient creates an executor for baseURL authenticating with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		userAgent:      DefaultUserAgent(),
		connectTimeout: constants.DefaultConnectTimeout,
		requestTimeout: constants.DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = newPooledClient(client.connectTimeout, client.requestTimeout)
	}

	return client
}

func newPooledClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: constants.DefaultConnectTimeout,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
}

// WithBaseURL returns a copy of c targeting baseURL over the same pool.
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.baseURL = strings.TrimRight(baseURL, "/")

	return &clone
}

// BaseURL returns the API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the pooled client shared by every derivation.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Do performs req, retrying as its strategy allows. Responses with status
// >= 400 are returned together with an *stripe.Error of kind api.
func (c *Client) Do(ctx context.Context, req *Request) (*stripe.Response, error) {
	if !req.Method.Valid() {
		return nil, stripe.NewSerializeError(fmt.Errorf("%w: %q", stripe.ErrUnsupportedMethod, req.Method))
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, stripe.NewTransportError(err)
	}

	attempts := &attemptTransport{
		base:   c.baseTransport(),
		chain:  c.interceptors,
		method: string(req.Method),
	}

	httpClient := *c.httpClient
	httpClient.Transport = attempts

	strategy := req.Strategy
	retryClient := &retryablehttp.Client{
		HTTPClient:      &httpClient,
		Logger:          c.leveledLogger(),
		RetryMax:        strategy.Attempts() - 1,
		RetryWaitMin:    0,
		RetryWaitMax:    0,
		CheckRetry:      c.checkRetry,
		ErrorHandler:    retryablehttp.PassthroughErrorHandler,
		RequestLogHook:  c.logRequest,
		ResponseLogHook: c.logResponse,
		Backoff: func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
			return strategy.DelayBefore(attemptNum + 1)
		},
	}

	resp, err := retryClient.Do(httpReq)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		return &stripe.Response{Attempts: attempts.count, Error: err}, classifyTransportError(ctx, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &stripe.Response{StatusCode: resp.StatusCode, Attempts: attempts.count, Error: err},
			classifyTransportError(ctx, err)
	}

	result := &stripe.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Attempts:   attempts.count,
	}

	if resp.StatusCode >= constants.HTTPStatusBadRequest {
		apiErr := stripe.NewAPIError(stripe.ParseAPIError(resp.StatusCode, resp.Header, body))
		result.Error = apiErr

		return result, apiErr
	}

	return result, nil
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	target := c.baseURL + req.Path
	encoded := req.Params.Encode()

	var body []byte

	if req.Method == stripe.MethodGet {
		if encoded != "" {
			target += "?" + encoded
		}
	} else {
		body = []byte(encoded)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, string(req.Method), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderAuthorization, "Bearer "+c.apiKey)
	httpReq.Header.Set(constants.HeaderStripeVersion, constants.APIVersion)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	if req.Method != stripe.MethodGet {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeForm)
	}

	for key, value := range req.Headers {
		if value != "" {
			httpReq.Header.Set(key, value)
		}
	}

	key, ok := req.Strategy.IdempotencyKey()
	if ok {
		httpReq.Header.Set(constants.HeaderIdempotencyKey, key.String())
	}

	return httpReq, nil
}

func (c *Client) baseTransport() http.RoundTripper {
	if c.httpClient.Transport != nil {
		return c.httpClient.Transport
	}

	return http.DefaultTransport
}

// checkRetry classifies one attempt. Caller cancellation and interceptor
// failures stop the loop; transport failures, timeouts and retryable API
// errors continue it.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	if err != nil {
		if errors.Is(err, stripe.ErrInterceptorAborted) {
			return false, err
		}

		return true, nil
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if readErr != nil {
		resp.Body = &failedBody{Reader: bytes.NewReader(body), err: readErr}

		return true, nil
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))

	if resp.StatusCode < constants.HTTPStatusBadRequest {
		return false, nil
	}

	return stripe.ParseAPIError(resp.StatusCode, resp.Header, body).Retryable(), nil
}

// failedBody replays the bytes read before a body read failed, then the failure.
type failedBody struct {
	*bytes.Reader
	err error
}

func (b *failedBody) Read(p []byte) (int, error) {
	n, err := b.Reader.Read(p)
	if errors.Is(err, io.EOF) {
		return n, b.err
	}

	return n, err
}

func (b *failedBody) Close() error {
	return nil
}

func (c *Client) logRequest(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"method":          req.Method,
		"path":            req.URL.Path,
		"attempt":         attempt,
		"idempotency_key": req.Header.Get(constants.HeaderIdempotencyKey),
	}

	if attempt > 0 {
		c.logger.Warn("Retrying HTTP Request", fields)

		return
	}

	if c.debug {
		c.logger.Debug("HTTP Request", fields)
	}
}

func (c *Client) logResponse(_ retryablehttp.Logger, resp *http.Response) {
	if c.logger == nil || !c.debug {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status":     resp.StatusCode,
		"request_id": resp.Header.Get(constants.HeaderRequestID),
	})
}

func (c *Client) leveledLogger() interface{} {
	if c.logger == nil || !c.debug {
		return nil
	}

	return &leveledLogger{logger: c.logger}
}

// classifyTransportError maps a failed exchange onto the error taxonomy.
func classifyTransportError(ctx context.Context, err error) *stripe.Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(err, ctxErr) {
			return stripe.NewTransportError(err)
		}

		return stripe.NewTransportError(fmt.Errorf("%w: %w", ctxErr, err))
	}

	if errors.Is(err, stripe.ErrInterceptorAborted) {
		return stripe.NewTransportError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return stripe.NewTimeoutError(err)
	}

	return stripe.NewTransportError(err)
}

// attemptTransport counts attempts and runs the interceptor chain around each.
// It does not forward CloseIdleConnections: the pool outlives any single call.
type attemptTransport struct {
	base   http.RoundTripper
	chain  *stripe.InterceptorChain
	method string
	count  int
}

func (t *attemptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.count++

	if t.chain.Len() == 0 {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()

	var body []byte

	if req.Body != nil {
		var err error

		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()

		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	headers := req.Header.Clone()
	headers.Del(constants.HeaderAuthorization)

	outbound := &stripe.OutboundRequest{
		Method:   t.method,
		Path:     req.URL.Path,
		Attempt:  t.count - 1,
		Headers:  headers,
		Body:     body,
		Metadata: make(map[string]interface{}),
	}

	err := t.chain.ExecuteRequestInterceptors(ctx, outbound)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stripe.ErrInterceptorAborted, err)
	}

	outgoing := req.Clone(ctx)
	outgoing.Body = io.NopCloser(bytes.NewReader(body))
	outgoing.ContentLength = int64(len(body))

	for key, values := range outbound.Headers {
		if strings.EqualFold(key, constants.HeaderAuthorization) {
			continue
		}

		outgoing.Header[key] = values
	}

	resp, err := t.base.RoundTrip(outgoing)

	observed := &stripe.Response{Error: err, Attempts: t.count}

	if resp != nil {
		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))

		observed.StatusCode = resp.StatusCode
		observed.Headers = resp.Header
		observed.Body = respBody

		if readErr != nil {
			observed.Error = readErr
		}
	}

	interceptErr := t.chain.ExecuteResponseInterceptors(ctx, outbound, observed)
	if interceptErr != nil {
		return nil, fmt.Errorf("%w: %w", stripe.ErrInterceptorAborted, interceptErr)
	}

	if err == nil && observed.Error != nil {
		return nil, observed.Error
	}

	return resp, err
}
