package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/stripe-client/cmd/stripe/commands"
	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/keystore"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// cliEnv isolates the CLI from the user's home directory and environment.
type cliEnv struct {
	home       string
	configPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STRIPE_API_KEY", "")
	t.Setenv("STRIPE_API_BASE", "")
	t.Setenv("STRIPE_ACCOUNT", "")

	viper.Reset()
	t.Cleanup(viper.Reset)

	return &cliEnv{home: home, configPath: filepath.Join(home, "config.yml")}
}

func (e *cliEnv) run(args ...string) (string, error) {
	return e.runContext(context.Background(), args...)
}

func (e *cliEnv) runContext(ctx context.Context, args ...string) (string, error) {
	viper.Reset()

	root := commands.NewRootCommand("1.2.3", "abc123", "2026-01-01")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := root.ExecuteContext(ctx)

	return out.String(), err
}

type cliRequest struct {
	method string
	path   string
	query  string
	body   string
	header http.Header
}

// stripeStub serves scripted responses, repeating the last one.
type stripeStub struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []stubReply
	requests []cliRequest
}

type stubReply struct {
	status int
	body   string
}

func newStripeStub(t *testing.T, replies ...stubReply) *stripeStub {
	t.Helper()

	stub := &stripeStub{replies: replies}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		stub.mu.Lock()
		stub.requests = append(stub.requests, cliRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(body),
			header: r.Header.Clone(),
		})
		reply := stub.replies[min(len(stub.requests), len(stub.replies))-1]
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Request-Id", "req_cli")
		w.WriteHeader(reply.status)
		_, _ = w.Write([]byte(reply.body))
	}))
	t.Cleanup(stub.Close)

	return stub
}

func (s *stripeStub) seen() []cliRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]cliRequest(nil), s.requests...)
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func TestNewRootCommand(t *testing.T) {
	newCLIEnv(t)

	root := commands.NewRootCommand("dev", "none", "unknown")
	assert.Equal(t, "stripe", root.Use)

	expected := map[string][]string{
		"version":         nil,
		"login":           nil,
		"config":          {"show", "set", "unset"},
		"customers":       {"get", "list", "create", "delete"},
		"charges":         {"create", "get", "list"},
		"payment-intents": {"create", "get", "list"},
	}

	for name, subcommands := range expected {
		cmd := findSubcommand(root, name)
		require.NotNil(t, cmd, "command %s should exist", name)

		for _, sub := range subcommands {
			assert.NotNil(t, findSubcommand(cmd, sub), "subcommand %s %s should exist", name, sub)
		}
	}

	for _, flag := range []string{"api-key", "api-base", "account", "output", "retries", "backoff", "idempotency-key", "resume", "keystore"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %s should exist", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("version", "--output", "json")
	require.NoError(t, err)

	var info map[string]string

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc123", info["commit"])
	assert.Equal(t, constants.APIVersion, info["api_version"])
}

func TestInvalidOutputFormat(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("version", "--output", "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutputFormat)
}

func TestConfigCommands(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("config", "set", "api_key", "sk_test_1234567890")
	require.NoError(t, err)

	_, err = env.run("config", "set", "account", "acct_123")
	require.NoError(t, err)

	_, err = env.run("config", "set", "colour", "blue")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	data, err := os.ReadFile(env.configPath)
	require.NoError(t, err)

	var saved commands.Config

	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "sk_test_1234567890", saved.APIKey)
	assert.Equal(t, "acct_123", saved.Account)

	out, err := env.run("config", "show", "--output", "json")
	require.NoError(t, err)

	var shown commands.Config

	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "sk_test_***", shown.APIKey)
	assert.Equal(t, "acct_123", shown.Account)

	_, err = env.run("config", "unset", "account")
	require.NoError(t, err)

	data, err = os.ReadFile(env.configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "acct_123")
}

func TestMissingAPIKey(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("customers", "get", "cus_1")
	require.ErrorIs(t, err, constants.ErrAPIKeyNotConfigured)
}

func TestCustomersGet(t *testing.T) {
	env := newCLIEnv(t)
	stub := newStripeStub(t, stubReply{http.StatusOK, `{"id":"cus_1","object":"customer","email":"a@b.c","name":"Ada"}`})

	out, err := env.run("customers", "get", "cus_1",
		"--api-key", "sk_test_cli", "--api-base", stub.URL, "--account", "acct_9", "--output", "json")
	require.NoError(t, err)

	var customer stripe.Customer

	require.NoError(t, json.Unmarshal([]byte(out), &customer))
	assert.Equal(t, "cus_1", customer.ID)
	assert.Equal(t, "Ada", customer.Name)

	requests := stub.seen()
	require.Len(t, requests, 1)
	assert.Equal(t, "/v1/customers/cus_1", requests[0].path)
	assert.Equal(t, "Bearer sk_test_cli", requests[0].header.Get("Authorization"))
	assert.Equal(t, "acct_9", requests[0].header.Get("Stripe-Account"))
	assert.Contains(t, requests[0].header.Get("User-Agent"), "stripe-cli")
}

func TestCustomersGet_TableOutput(t *testing.T) {
	env := newCLIEnv(t)
	stub := newStripeStub(t, stubReply{http.StatusOK, `{"id":"cus_1","object":"customer","email":"a@b.c"}`})

	out, err := env.run("customers", "get", "cus_1", "--api-key", "sk_test_cli", "--api-base", stub.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "cus_1")
	assert.Contains(t, out, "a@b.c")
}

func TestCustomersList_Paginates(t *testing.T) {
	env := newCLIEnv(t)
	stub := newStripeStub(t,
		stubReply{http.StatusOK, `{"object":"list","url":"/v1/customers","has_more":true,"data":[{"id":"cus_a"},{"id":"cus_b"}]}`},
		stubReply{http.StatusOK, `{"object":"list","url":"/v1/customers","has_more":true,"data":[{"id":"cus_c"},{"id":"cus_d"}]}`},
	)

	out, err := env.run("customers", "list", "--limit", "3", "--api-key", "sk_test_cli", "--api-base", stub.URL, "--output", "json")
	require.NoError(t, err)

	var customers []stripe.Customer

	require.NoError(t, json.Unmarshal([]byte(out), &customers))
	require.Len(t, customers, 3)
	assert.Equal(t, "cus_c", customers[2].ID)

	requests := stub.seen()
	require.Len(t, requests, 2)
	assert.Equal(t, "limit=3", requests[0].query)
	assert.Equal(t, "limit=3&starting_after=cus_b", requests[1].query)
}

func TestChargesCreate_RetriesWithOneKey(t *testing.T) {
	env := newCLIEnv(t)
	stub := newStripeStub(t,
		stubReply{http.StatusInternalServerError, `{"error":{"type":"api_error"}}`},
		stubReply{http.StatusOK, `{"id":"ch_1","object":"charge","amount":1000,"currency":"usd","paid":true}`},
	)

	out, err := env.run("charges", "create", "--amount", "1000", "--currency", "usd", "--metadata", "order=42",
		"--retries", "2", "--api-key", "sk_test_cli", "--api-base", stub.URL, "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: ch_1")

	requests := stub.seen()
	require.Len(t, requests, 2)
	assert.NotEmpty(t, requests[0].header.Get("Idempotency-Key"))
	assert.Equal(t, requests[0].header.Get("Idempotency-Key"), requests[1].header.Get("Idempotency-Key"))
	assert.Equal(t, "amount=1000&currency=usd&metadata%5Border%5D=42", requests[0].body)
}

func TestChargesCreate_Validation(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("charges", "create", "--currency", "usd", "--api-key", "sk_test_cli")
	require.ErrorIs(t, err, constants.ErrAmountRequired)

	_, err = env.run("charges", "create", "--amount", "100", "--api-key", "sk_test_cli")
	require.ErrorIs(t, err, constants.ErrCurrencyRequired)

	_, err = env.run("charges", "create", "--amount", "100", "--currency", "usd", "--api-key", "sk_test_cli",
		"--idempotency-key", "k1", "--retries", "3")
	require.ErrorIs(t, err, constants.ErrConflictingStrategyFlags)

	_, err = env.run("charges", "create", "--amount", "100", "--currency", "usd", "--api-key", "sk_test_cli",
		"--retries", "9")
	require.ErrorIs(t, err, constants.ErrInvalidRetryCount)
}

func TestChargesCreate_ExplicitKey(t *testing.T) {
	env := newCLIEnv(t)
	stub := newStripeStub(t, stubReply{http.StatusOK, `{"id":"ch_1","object":"charge"}`})

	_, err := env.run("charges", "create", "--amount", "100", "--currency", "usd",
		"--idempotency-key", "my-key-abc", "--api-key", "sk_test_cli", "--api-base", stub.URL)
	require.NoError(t, err)

	requests := stub.seen()
	require.Len(t, requests, 1)
	assert.Equal(t, "my-key-abc", requests[0].header.Get("Idempotency-Key"))
}

func TestChargesCreate_ResumeReusesStoredKey(t *testing.T) {
	env := newCLIEnv(t)
	keysPath := filepath.Join(env.home, "keys.db")

	stub := newStripeStub(t,
		stubReply{http.StatusServiceUnavailable, `{"error":{"type":"api_error","message":"overloaded"}}`},
		stubReply{http.StatusOK, `{"id":"ch_1","object":"charge"}`},
	)

	args := []string{
		"charges", "create", "--amount", "100", "--currency", "usd",
		"--resume", "order-42/charge", "--keystore", "bolt", "--keystore-path", keysPath,
		"--api-key", "sk_test_cli", "--api-base", stub.URL,
	}

	_, err := env.run(args...)
	require.Error(t, err)
	assert.True(t, stripe.IsRetryable(err))

	_, err = env.run(args...)
	require.NoError(t, err)

	requests := stub.seen()
	require.Len(t, requests, 2)
	assert.NotEmpty(t, requests[0].header.Get("Idempotency-Key"))
	assert.Equal(t, requests[0].header.Get("Idempotency-Key"), requests[1].header.Get("Idempotency-Key"))

	store, err := keystore.OpenBoltStore(keysPath)
	require.NoError(t, err)

	defer func() { _ = store.Close() }()

	_, err = store.Get(context.Background(), "order-42/charge")
	require.ErrorIs(t, err, keystore.ErrNotFound)
}

func TestChargesCreate_CancelledResumeKeepsKey(t *testing.T) {
	env := newCLIEnv(t)
	keysPath := filepath.Join(env.home, "keys.db")

	var hits atomic.Int32

	keys := make(chan string, 2)
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")

		if hits.Add(1) == 1 {
			select {
			case <-release:
			case <-r.Context().Done():
			}

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ch_1","object":"charge"}`))
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	args := []string{
		"charges", "create", "--amount", "100", "--currency", "usd",
		"--resume", "order-7/charge", "--keystore", "bolt", "--keystore-path", keysPath,
		"--api-key", "sk_test_cli", "--api-base", server.URL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := env.runContext(ctx, args...)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = env.run(args...)
	require.NoError(t, err)

	first, second := <-keys, <-keys
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestPaymentIntentsCreate(t *testing.T) {
	env := newCLIEnv(t)
	stub := newStripeStub(t, stubReply{http.StatusOK,
		`{"id":"pi_1","object":"payment_intent","amount":500,"currency":"usd","status":"requires_payment_method","client_secret":"pi_1_secret"}`})

	out, err := env.run("payment-intents", "create", "--amount", "500", "--currency", "usd",
		"--api-key", "sk_test_cli", "--api-base", stub.URL, "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "status: requires_payment_method")
	assert.NotContains(t, out, "pi_1_secret")

	requests := stub.seen()
	require.Len(t, requests, 1)
	assert.Equal(t, "/v1/payment_intents", requests[0].path)
	assert.Equal(t, "amount=500&currency=usd", requests[0].body)
}

func TestFormatError(t *testing.T) {
	newCLIEnv(t)

	apiErr := stripe.NewAPIError(&stripe.APIError{
		HTTPStatusCode: http.StatusPaymentRequired,
		RequestID:      "req_1",
		Type:           stripe.ErrorTypeCard,
		Code:           "card_declined",
		Message:        "Your card was declined.",
		RequestLogURL:  "https://dashboard.stripe.com/logs/req_1",
	})

	formatted := commands.FormatError(apiErr)
	assert.Contains(t, formatted, "Your card was declined.")
	assert.Contains(t, formatted, "code: card_declined")
	assert.Contains(t, formatted, "request: req_1")
	assert.Contains(t, formatted, "log: https://dashboard.stripe.com/logs/req_1")

	assert.Equal(t, "Error: boom", commands.FormatError(errors.New("boom")))
}
