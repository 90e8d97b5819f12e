// Package stripeclient is the entry point for constructing a Stripe API
// client that implements the stripe.Client interface.
//
// The returned client carries the API key, the API base, the optional
// connected account and platform application ids, and a default request
// strategy. Requests are built with the typed builders of the stripe package
// and executed through stripe.Execute or a stripe.ListPaginator.
//
// Quick start
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
//
//	  cli, err := stripeclient.NewWithKey("sk_test_...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Retries share one idempotency key, so a charge is created at most once.
//	  charge, err := stripe.Execute(ctx, cli.WithStrategy(stripe.ExponentialBackoff(3)),
//	    stripe.CreateCharge(&stripe.ChargeParams{
//	      Amount:   stripe.Int64(1000),
//	      Currency: stripe.String("usd"),
//	      Source:   stripe.String("tok_visa"),
//	    }))
//	  if err != nil { log.Fatal(err) }
//	  log.Println(charge.ID)
//
//	  // Act on behalf of a connected account.
//	  acct, _ := stripe.ParseAccountID("acct_123")
//	  connected := cli.WithAccountID(acct)
//
//	  pages := stripe.NewListPaginator(connected, stripe.ListCustomers(&stripe.CustomerListParams{
//	    ListParams: stripe.ListParams{Limit: stripe.Int64(100)},
//	  }))
//	  for customer, err := range pages.All(ctx) {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(customer.ID)
//	  }
//	}
//
// Configuration
//
// New accepts a *stripe.Config for full control: API base (a missing scheme
// defaults to https), timeouts, a custom *http.Client, a Logger with Debug for
// per-attempt logs, and request/response interceptors such as those returned
// by stripe.NewMetricsCollector.
package stripeclient
