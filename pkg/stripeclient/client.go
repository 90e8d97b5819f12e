package stripeclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/stripe-client/internal/client"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// New creates a new Stripe API client from config.
func New(config *stripe.Config) (stripe.Client, error) {
	if config == nil {
		return nil, stripe.ErrConfigRequired
	}

	if strings.TrimSpace(config.APIKey) == "" {
		return nil, stripe.ErrAPIKeyRequired
	}

	normalized := *config
	normalized.APIBase = normalizeAPIBase(config.APIBase)

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithKey creates a client for apiKey against the public Stripe API.
func NewWithKey(apiKey string) (stripe.Client, error) {
	return New(&stripe.Config{APIKey: apiKey})
}

// NewWithStrategy creates a client whose calls default to strategy.
func NewWithStrategy(apiKey string, strategy stripe.RequestStrategy) (stripe.Client, error) {
	return New(&stripe.Config{APIKey: apiKey, Strategy: &strategy})
}

// normalizeAPIBase trims trailing slashes and defaults the scheme to https.
func normalizeAPIBase(apiBase string) string {
	if apiBase == "" {
		return ""
	}

	apiBase = strings.TrimRight(apiBase, "/")
	if !strings.HasPrefix(apiBase, "http://") && !strings.HasPrefix(apiBase, "https://") {
		apiBase = "https://" + apiBase
	}

	return apiBase
}
