package client

import (
	"context"
	"strings"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/internal/http"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

var _ stripe.Client = (*Client)(nil)

// Client implements the stripe.Client interface. It is immutable; the With
// methods return derived clients sharing the same HTTP executor pool.
type Client struct {
	httpClient    *http.Client
	strategy      stripe.RequestStrategy
	accountID     stripe.AccountID
	applicationID stripe.ApplicationID
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *stripe.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgentSuffix != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgentSuffix))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	httpOpts = append(httpOpts,
		http.WithConnectTimeout(config.ConnectTimeout),
		http.WithRequestTimeout(config.RequestTimeout),
	)

	if len(config.RequestInterceptors) > 0 || len(config.ResponseInterceptors) > 0 {
		chain := stripe.NewInterceptorChain()

		for _, interceptor := range config.RequestInterceptors {
			chain.AddRequestInterceptor(interceptor)
		}

		for _, interceptor := range config.ResponseInterceptors {
			chain.AddResponseInterceptor(interceptor)
		}

		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts
}

// New creates a new Stripe client from config.
func New(config *stripe.Config) (*Client, error) {
	if config == nil {
		return nil, stripe.ErrConfigRequired
	}

	if strings.TrimSpace(config.APIKey) == "" {
		return nil, stripe.ErrAPIKeyRequired
	}

	apiBase := config.APIBase
	if apiBase == "" {
		apiBase = constants.DefaultAPIBase
	}

	strategy := stripe.Once()
	if config.Strategy != nil {
		strategy = *config.Strategy
	}

	return &Client{
		httpClient:    http.NewClient(apiBase, config.APIKey, createHTTPClientOptions(config)...),
		strategy:      strategy,
		accountID:     config.AccountID,
		applicationID: config.ApplicationID,
	}, nil
}

// Call implements stripe.Backend.
func (c *Client) Call(ctx context.Context, call *stripe.Call) (*stripe.Response, error) {
	strategy := c.strategy
	if call.Strategy != nil {
		strategy = *call.Strategy
	}

	headers := make(map[string]string, 2)

	if c.accountID != "" {
		headers[constants.HeaderStripeAccount] = string(c.accountID)
	}

	if c.applicationID != "" {
		headers[constants.HeaderStripeApplication] = string(c.applicationID)
	}

	return c.httpClient.Do(ctx, &http.Request{
		Method:   call.Method,
		Path:     call.Path,
		Params:   call.Params,
		Headers:  headers,
		Strategy: strategy,
	})
}

// WithStrategy implements stripe.Client.
func (c *Client) WithStrategy(strategy stripe.RequestStrategy) stripe.Client {
	clone := *c
	clone.strategy = strategy

	return &clone
}

// WithClientID implements stripe.Client.
func (c *Client) WithClientID(id stripe.ApplicationID) stripe.Client {
	clone := *c
	clone.applicationID = id

	return &clone
}

// WithAccountID implements stripe.Client.
func (c *Client) WithAccountID(id stripe.AccountID) stripe.Client {
	clone := *c
	clone.accountID = id

	return &clone
}

// WithAPIBase implements stripe.Client.
func (c *Client) WithAPIBase(base string) stripe.Client {
	clone := *c
	clone.httpClient = c.httpClient.WithBaseURL(base)

	return &clone
}

// DefaultStrategy implements stripe.Client.
func (c *Client) DefaultStrategy() stripe.RequestStrategy {
	return c.strategy
}

// AccountID implements stripe.Client.
func (c *Client) AccountID() stripe.AccountID {
	return c.accountID
}

// ClientID implements stripe.Client.
func (c *Client) ClientID() stripe.ApplicationID {
	return c.applicationID
}

// APIBase implements stripe.Client.
func (c *Client) APIBase() string {
	return c.httpClient.BaseURL()
}

// HTTPExecutor exposes the shared executor; derived clients return the same pool.
func (c *Client) HTTPExecutor() *http.Client {
	return c.httpClient
}
