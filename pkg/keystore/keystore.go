// Package keystore persists idempotency keys under caller-chosen names so a
// logical call interrupted by a process restart can be reissued with the key
// its first attempt used.
//
// The client itself never stores keys. A caller that wants resumable calls
// resolves a key by name before executing, passes it to stripe.Idempotent,
// and deletes the name once the call has a definite outcome:
//
//	key, err := keystore.Resolve(ctx, store, "order-42/charge")
//	if err != nil { return err }
//
//	charge, err := stripe.Execute(ctx, client.WithStrategy(stripe.Idempotent(key)), req)
//	if keystore.Settled(err) {
//	  _ = store.Delete(ctx, "order-42/charge")
//	}
package keystore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// Static errors for err113 compliance.
var (
	ErrNotFound    = errors.New("keystore: name not found")
	ErrInvalidName = errors.New("keystore: name must not be empty")
	ErrClosed      = errors.New("keystore: store is closed")
)

// Store maps logical call names to idempotency keys.
type Store interface {
	// Get returns the key stored under name or ErrNotFound.
	Get(ctx context.Context, name string) (string, error)
	// PutIfAbsent stores key under name unless a key is already present and
	// returns whichever key is stored afterwards.
	PutIfAbsent(ctx context.Context, name, key string) (string, error)
	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}

// Resolve returns the idempotency key stored under name, generating and
// storing a new one when none exists. Concurrent resolvers of the same name
// observe the first writer's key.
func Resolve(ctx context.Context, store Store, name string) (stripe.IdempotencyKey, error) {
	err := validateName(name)
	if err != nil {
		return stripe.IdempotencyKey{}, err
	}

	stored, err := store.Get(ctx, name)

	switch {
	case err == nil:
		return parseStored(name, stored)
	case !errors.Is(err, ErrNotFound):
		return stripe.IdempotencyKey{}, fmt.Errorf("loading key %q: %w", name, err)
	}

	stored, err = store.PutIfAbsent(ctx, name, stripe.GenerateIdempotencyKey().String())
	if err != nil {
		return stripe.IdempotencyKey{}, fmt.Errorf("storing key %q: %w", name, err)
	}

	return parseStored(name, stored)
}

// Settled reports whether a call that returned err has a definite outcome, so
// its stored key can be deleted. Cancelled calls and retryable failures may
// already have been applied by Stripe and keep their key.
func Settled(err error) bool {
	if err == nil {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return !stripe.IsRetryable(err)
}

func parseStored(name, stored string) (stripe.IdempotencyKey, error) {
	key, err := stripe.NewIdempotencyKey(stored)
	if err != nil {
		return stripe.IdempotencyKey{}, fmt.Errorf("stored key %q: %w", name, err)
	}

	return key, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}

	return nil
}
