// Package stripe provides the typed core of a Stripe API client: request
// descriptors, retry strategies, the error taxonomy, list pagination and a
// handful of resource types.
//
// # Overview
//
// A request builder returns a *Request[T] whose type parameter is the type its
// response decodes into. Execute sends it through any Backend, usually a
// Client built by the stripeclient package:
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/stripe-client/pkg/stripe"
//	  "github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  client, err := stripeclient.NewWithKey("sk_test_...")
//	  if err != nil { log.Fatal(err) }
//
//	  customer, err := stripe.Execute(ctx, client, stripe.RetrieveCustomer("cus_123"))
//	  if err != nil { log.Fatal(err) }
//	  _ = customer
//	}
//
// # Strategies and idempotency
//
// Every call runs under a RequestStrategy: Once, Idempotent(key), Retry(n) or
// ExponentialBackoff(n). Retrying strategies generate one idempotency key per
// call and send it on every attempt, so Stripe applies the mutation at most
// once. Only errors reported as retryable are retried:
//
//	charge, err := stripe.Execute(ctx, client, stripe.CreateCharge(&stripe.ChargeParams{
//	  Amount:   stripe.Int64(1000),
//	  Currency: stripe.String("usd"),
//	}).WithStrategy(stripe.ExponentialBackoff(4)))
//
// # Pagination
//
// NewListPaginator walks a list endpoint across pages using starting_after:
//
//	paginator := stripe.NewListPaginator(client, stripe.ListCustomers(nil))
//	for customer, err := range paginator.All(ctx) {
//	  if err != nil { break }
//	  _ = customer
//	}
//
// # Errors
//
// Every operation fails with *Error. Its Kind distinguishes client-side
// failures (serialize, transport, timeout, decode) from API errors, which carry
// the parsed *APIError. Helpers such as IsCardError, IsNotFound and
// IsRetryable cover the common branches.
//
// # Interceptors and metrics
//
// Request and response interceptors observe every physical attempt. The
// package ships logging and header interceptors, and MetricsCollector exports
// per-attempt Prometheus metrics.
package stripe
