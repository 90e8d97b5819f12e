package stripe_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/stripe-client/pkg/form"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_DecodesResult(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(fakeReply{status: 200, body: `{"id":"cus_123","object":"customer","email":"a@b.c"}`})

	customer, err := stripe.Execute(context.Background(), backend, stripe.RetrieveCustomer("cus_123"))
	require.NoError(t, err)
	assert.Equal(t, "cus_123", customer.ID)
	assert.Equal(t, "a@b.c", customer.Email)

	calls := backend.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, stripe.MethodGet, calls[0].Method)
	assert.Equal(t, "/v1/customers/cus_123", calls[0].Path)
	assert.Empty(t, calls[0].Params)
	assert.Nil(t, calls[0].Strategy)
}

func TestExecute_DecodeError(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(fakeReply{status: 200, body: `{"id": 42}`})

	_, err := stripe.Execute(context.Background(), backend, stripe.RetrieveCustomer("cus_123"))
	require.ErrorIs(t, err, stripe.ErrDecode)
	assert.False(t, stripe.IsRetryable(err))

	var stripeErr *stripe.Error

	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, 200, stripeErr.HTTPStatusCode)
}

func TestExecute_SerializeErrorNeverReachesBackend(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	request := stripe.NewRequest[stripe.Customer](stripe.MethodPost, "/v1/customers", map[string]any{"bad": make(chan int)})

	_, err := stripe.Execute(context.Background(), backend, request)
	require.ErrorIs(t, err, stripe.ErrSerialize)
	require.ErrorIs(t, err, form.ErrUnsupportedType)
	assert.Empty(t, backend.recorded())
}

func TestExecute_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	request := stripe.NewRequest[stripe.Customer]("PATCH", "/v1/customers/cus_1", nil)

	_, err := stripe.Execute(context.Background(), backend, request)
	require.ErrorIs(t, err, stripe.ErrUnsupportedMethod)
	assert.Empty(t, backend.recorded())
}

func TestRequest_WithStrategyCopies(t *testing.T) {
	t.Parallel()

	original := stripe.CreateCharge(&stripe.ChargeParams{Amount: stripe.Int64(1000), Currency: stripe.String("usd")})
	retried := original.WithStrategy(stripe.Retry(3))

	_, ok := original.Strategy()
	assert.False(t, ok)

	strategy, ok := retried.Strategy()
	require.True(t, ok)
	assert.Equal(t, stripe.StrategyRetry, strategy.Kind())

	backend := newFakeBackend(fakeReply{status: 200, body: `{"id":"ch_1","object":"charge","amount":1000,"currency":"usd"}`})

	charge, err := stripe.Execute(context.Background(), backend, retried)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), charge.Amount)

	calls := backend.recorded()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Strategy)
	assert.Equal(t, 3, calls[0].Strategy.Attempts())
	assert.Equal(t, form.Pairs{{Key: "amount", Value: "1000"}, {Key: "currency", Value: "usd"}}, calls[0].Params)
}

func TestRequest_EncodeParamsIsRepeatable(t *testing.T) {
	t.Parallel()

	request := stripe.CreatePaymentIntent(&stripe.PaymentIntentParams{
		Amount:   stripe.Int64(500),
		Currency: stripe.String("usd"),
		Metadata: map[string]string{"tag": "vip", "order_id": "42"},
	})

	first, err := request.EncodeParams()
	require.NoError(t, err)

	second, err := request.EncodeParams()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "amount=500&currency=usd&metadata%5Border_id%5D=42&metadata%5Btag%5D=vip", first.Encode())
}

func TestEndpoints_PathsAndMethods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method stripe.Method
		path   string
		got    interface {
			Method() stripe.Method
			Path() string
		}
	}{
		{name: "retrieve customer", method: stripe.MethodGet, path: "/v1/customers/cus_1", got: stripe.RetrieveCustomer("cus_1")},
		{name: "escaped id", method: stripe.MethodGet, path: "/v1/customers/cus%2F1", got: stripe.RetrieveCustomer("cus/1")},
		{name: "create customer", method: stripe.MethodPost, path: "/v1/customers", got: stripe.CreateCustomer(nil)},
		{name: "update customer", method: stripe.MethodPost, path: "/v1/customers/cus_1", got: stripe.UpdateCustomer("cus_1", nil)},
		{name: "delete customer", method: stripe.MethodDelete, path: "/v1/customers/cus_1", got: stripe.DeleteCustomer("cus_1")},
		{name: "list customers", method: stripe.MethodGet, path: "/v1/customers", got: stripe.ListCustomers(nil)},
		{name: "create charge", method: stripe.MethodPost, path: "/v1/charges", got: stripe.CreateCharge(nil)},
		{name: "retrieve charge", method: stripe.MethodGet, path: "/v1/charges/ch_1", got: stripe.RetrieveCharge("ch_1")},
		{name: "list charges", method: stripe.MethodGet, path: "/v1/charges", got: stripe.ListCharges(nil)},
		{name: "create payment intent", method: stripe.MethodPost, path: "/v1/payment_intents", got: stripe.CreatePaymentIntent(nil)},
		{name: "retrieve payment intent", method: stripe.MethodGet, path: "/v1/payment_intents/pi_1", got: stripe.RetrievePaymentIntent("pi_1")},
		{name: "list payment intents", method: stripe.MethodGet, path: "/v1/payment_intents", got: stripe.ListPaymentIntents(nil)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.method, testCase.got.Method())
			assert.Equal(t, testCase.path, testCase.got.Path())
		})
	}
}

func TestParseIdentifiers(t *testing.T) {
	t.Parallel()

	account, err := stripe.ParseAccountID("acct_1Abc")
	require.NoError(t, err)
	assert.Equal(t, stripe.AccountID("acct_1Abc"), account)

	_, err = stripe.ParseAccountID("cus_1")
	require.ErrorIs(t, err, stripe.ErrInvalidAccountID)

	_, err = stripe.ParseAccountID("acct_")
	require.ErrorIs(t, err, stripe.ErrInvalidAccountID)

	application, err := stripe.ParseApplicationID("ca_123")
	require.NoError(t, err)
	assert.Equal(t, stripe.ApplicationID("ca_123"), application)

	_, err = stripe.ParseApplicationID("acct_1")
	require.ErrorIs(t, err, stripe.ErrInvalidApplicationID)
}
