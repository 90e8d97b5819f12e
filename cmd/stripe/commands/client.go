package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/keystore"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
	"github.com/fivetwenty-io/stripe-client/pkg/stripelog"
)

const natsKeyBucket = "stripe_idempotency_keys"

// newClient builds a client from the effective configuration.
func newClient() (stripe.Client, error) {
	config := effectiveConfig()
	if config.APIKey == "" {
		return nil, constants.ErrAPIKeyNotConfigured
	}

	clientConfig := &stripe.Config{
		APIKey:          config.APIKey,
		APIBase:         config.APIBase,
		Logger:          stripelog.NewZerolog(setupLogger()),
		Debug:           viper.GetBool("verbose"),
		UserAgentSuffix: "stripe-cli",
	}

	if config.Account != "" {
		account, err := stripe.ParseAccountID(config.Account)
		if err != nil {
			return nil, err
		}

		clientConfig.AccountID = account
	}

	return stripeclient.New(clientConfig)
}

// callStrategy is the per-command request strategy and its cleanup.
type callStrategy struct {
	strategy *stripe.RequestStrategy
	finish   func(err error)
}

// resolveStrategy turns --retries, --backoff, --idempotency-key and --resume
// into a request strategy. The returned finish func must be called with the
// call's outcome; it forgets a resumable key once the outcome is definite.
func resolveStrategy(ctx context.Context, cmd *cobra.Command) (*callStrategy, error) {
	flags := cmd.Flags()

	retries, _ := flags.GetInt("retries")
	backoff, _ := flags.GetBool("backoff")
	key, _ := flags.GetString("idempotency-key")
	resume, _ := flags.GetString("resume")

	noop := &callStrategy{finish: func(error) {}}
	retrying := retries > 0 || backoff

	if (key != "" && resume != "") || ((key != "" || resume != "") && retrying) {
		return nil, constants.ErrConflictingStrategyFlags
	}

	if retries < 0 || retries > constants.MaxAttempts {
		return nil, constants.ErrInvalidRetryCount
	}

	switch {
	case key != "":
		idempotencyKey, err := stripe.NewIdempotencyKey(key)
		if err != nil {
			return nil, err
		}

		strategy := stripe.Idempotent(idempotencyKey)
		noop.strategy = &strategy

		return noop, nil
	case resume != "":
		return resumeStrategy(ctx, resume)
	case backoff:
		if retries == 0 {
			retries = constants.DefaultRetryAttempts
		}

		strategy := stripe.ExponentialBackoff(retries)
		noop.strategy = &strategy

		return noop, nil
	case retries > 0:
		strategy := stripe.Retry(retries)
		noop.strategy = &strategy

		return noop, nil
	default:
		return noop, nil
	}
}

func resumeStrategy(ctx context.Context, name string) (*callStrategy, error) {
	store, closeStore, err := openKeyStore(ctx)
	if err != nil {
		return nil, err
	}

	key, err := keystore.Resolve(ctx, store, name)
	if err != nil {
		_ = closeStore()

		return nil, err
	}

	strategy := stripe.Idempotent(key)

	return &callStrategy{
		strategy: &strategy,
		finish: func(callErr error) {
			defer func() { _ = closeStore() }()

			if keystore.Settled(callErr) {
				_ = store.Delete(context.WithoutCancel(ctx), name)
			}
		},
	}, nil
}

func openKeyStore(ctx context.Context) (keystore.Store, func() error, error) {
	config := effectiveConfig()

	switch config.Keystore {
	case "", "bolt":
		path := config.KeystorePath
		if path == "" {
			path = filepath.Join(configDir(), "keys.db")
		}

		store, err := keystore.OpenBoltStore(path)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	case "nats":
		url := config.NATSURL
		if url == "" {
			url = nats.DefaultURL
		}

		store, err := keystore.DialNATSStore(ctx, url, natsKeyBucket)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	case "memory":
		return keystore.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", constants.ErrUnknownKeystore, config.Keystore)
	}
}

// execute runs req with the strategy selected by the command's flags.
func execute[T any](cmd *cobra.Command, req *stripe.Request[T]) (T, error) {
	var zero T

	ctx := cmd.Context()

	client, err := newClient()
	if err != nil {
		return zero, err
	}

	strategy, err := resolveStrategy(ctx, cmd)
	if err != nil {
		return zero, err
	}

	if strategy.strategy != nil {
		req = req.WithStrategy(*strategy.strategy)
	}

	result, err := stripe.Execute(ctx, client, req)
	strategy.finish(err)

	return result, err
}

// listItems pages through req. With all unset it stops after limit items.
func listItems[T stripe.Identifiable](cmd *cobra.Command, req *stripe.Request[stripe.Envelope[T]], limit int, all bool) ([]T, error) {
	ctx := cmd.Context()

	client, err := newClient()
	if err != nil {
		return nil, err
	}

	strategy, err := resolveStrategy(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if strategy.strategy != nil {
		req = req.WithStrategy(*strategy.strategy)
	}

	paginator := stripe.NewListPaginator(client, req)

	var items []T

	if all {
		err = paginator.ForEach(ctx, func(item T) error {
			items = append(items, item)

			return nil
		})
	} else {
		items, err = paginator.CollectUpTo(ctx, limit)
	}

	strategy.finish(err)

	return items, err
}
