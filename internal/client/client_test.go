package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/internal/client"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

type capturedRequest struct {
	path    string
	headers http.Header
}

func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		captured []capturedRequest
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		captured = append(captured, capturedRequest{path: r.URL.Path, headers: r.Header.Clone()})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()

		return append([]capturedRequest(nil), captured...)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := client.New(nil)
	require.ErrorIs(t, err, stripe.ErrConfigRequired)

	_, err = client.New(&stripe.Config{APIKey: "  "})
	require.ErrorIs(t, err, stripe.ErrAPIKeyRequired)

	c, err := client.New(&stripe.Config{APIKey: "sk_test_123"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.stripe.com", c.APIBase())
	assert.Equal(t, stripe.StrategyOnce, c.DefaultStrategy().Kind())
	assert.Empty(t, c.AccountID())
	assert.Empty(t, c.ClientID())
}

func TestClient_ConnectHeaders(t *testing.T) {
	t.Parallel()

	server, captured := newCaptureServer(t, http.StatusOK, `{"id":"cus_1","object":"customer"}`)

	c, err := client.New(&stripe.Config{APIKey: "sk_test_123", APIBase: server.URL})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = stripe.Execute(ctx, c, stripe.RetrieveCustomer("cus_1"))
	require.NoError(t, err)

	connected := c.WithAccountID("acct_1").WithClientID("ca_1")

	customer, err := stripe.Execute(ctx, connected, stripe.RetrieveCustomer("cus_1"))
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customer.ID)

	requests := captured()
	require.Len(t, requests, 2)

	assert.Empty(t, requests[0].headers.Get("Stripe-Account"))
	assert.Empty(t, requests[0].headers.Get("Stripe-Application"))
	assert.Equal(t, "acct_1", requests[1].headers.Get("Stripe-Account"))
	assert.Equal(t, "ca_1", requests[1].headers.Get("Stripe-Application"))

	assert.Empty(t, c.AccountID(), "the original client is unchanged")
	assert.Equal(t, stripe.AccountID("acct_1"), connected.AccountID())
	assert.Equal(t, stripe.ApplicationID("ca_1"), connected.ClientID())
}

func TestClient_StrategyPrecedence(t *testing.T) {
	t.Parallel()

	server, captured := newCaptureServer(t, http.StatusOK, `{"id":"ch_1","object":"charge"}`)

	c, err := client.New(&stripe.Config{APIKey: "sk_test_123", APIBase: server.URL})
	require.NoError(t, err)

	key, err := stripe.NewIdempotencyKey("client-default")
	require.NoError(t, err)

	override, err := stripe.NewIdempotencyKey("per-request")
	require.NoError(t, err)

	derived := c.WithStrategy(stripe.Idempotent(key))
	params := &stripe.ChargeParams{Amount: stripe.Int64(1000), Currency: stripe.String("usd")}
	ctx := context.Background()

	_, err = stripe.Execute(ctx, derived, stripe.CreateCharge(params))
	require.NoError(t, err)

	_, err = stripe.Execute(ctx, derived, stripe.CreateCharge(params).WithStrategy(stripe.Idempotent(override)))
	require.NoError(t, err)

	_, err = stripe.Execute(ctx, c, stripe.CreateCharge(params))
	require.NoError(t, err)

	requests := captured()
	require.Len(t, requests, 3)

	assert.Equal(t, "client-default", requests[0].headers.Get("Idempotency-Key"))
	assert.Equal(t, "per-request", requests[1].headers.Get("Idempotency-Key"))
	assert.Empty(t, requests[2].headers.Get("Idempotency-Key"))
	assert.Equal(t, stripe.StrategyOnce, c.DefaultStrategy().Kind())
}

func TestClient_WithAPIBase(t *testing.T) {
	t.Parallel()

	first, firstCaptured := newCaptureServer(t, http.StatusOK, `{"id":"cus_1","object":"customer"}`)
	second, secondCaptured := newCaptureServer(t, http.StatusOK, `{"id":"cus_2","object":"customer"}`)

	c, err := client.New(&stripe.Config{APIKey: "sk_test_123", APIBase: first.URL})
	require.NoError(t, err)

	moved := c.WithAPIBase(second.URL)
	assert.Equal(t, second.URL, moved.APIBase())
	assert.Equal(t, first.URL, c.APIBase())

	customer, err := stripe.Execute(context.Background(), moved, stripe.RetrieveCustomer("cus_2"))
	require.NoError(t, err)
	assert.Equal(t, "cus_2", customer.ID)

	assert.Empty(t, firstCaptured())
	assert.Len(t, secondCaptured(), 1)

	concrete, ok := moved.(*client.Client)
	require.True(t, ok)
	assert.Same(t, c.HTTPExecutor().HTTPClient(), concrete.HTTPExecutor().HTTPClient())
}

func TestClient_ConfigInterceptors(t *testing.T) {
	t.Parallel()

	server, captured := newCaptureServer(t, http.StatusPaymentRequired,
		`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)

	var (
		mu        sync.Mutex
		responses []int
	)

	c, err := client.New(&stripe.Config{
		APIKey:  "sk_test_123",
		APIBase: server.URL,
		RequestInterceptors: []stripe.RequestInterceptor{
			stripe.HeaderInterceptor(map[string]string{"X-Trace": "abc"}),
		},
		ResponseInterceptors: []stripe.ResponseInterceptor{
			func(_ context.Context, _ *stripe.OutboundRequest, resp *stripe.Response) error {
				mu.Lock()
				defer mu.Unlock()

				responses = append(responses, resp.StatusCode)

				return nil
			},
		},
	})
	require.NoError(t, err)

	_, err = stripe.Execute(context.Background(), c, stripe.CreateCharge(&stripe.ChargeParams{
		Amount:   stripe.Int64(1000),
		Currency: stripe.String("usd"),
	}))
	require.Error(t, err)

	var stripeErr *stripe.Error

	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, stripe.CategoryCard, stripeErr.API.Category())

	requests := captured()
	require.Len(t, requests, 1)
	assert.Equal(t, "abc", requests[0].headers.Get("X-Trace"))

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []int{http.StatusPaymentRequired}, responses)
}
