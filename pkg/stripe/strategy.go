package stripe

import (
	"fmt"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// IdempotencyKey is the token Stripe uses to deduplicate retries of one
// logical mutation. Construct it with NewIdempotencyKey or GenerateIdempotencyKey.
type IdempotencyKey struct {
	value string
}

// NewIdempotencyKey validates a caller supplied key.
func NewIdempotencyKey(key string) (IdempotencyKey, error) {
	length := utf8.RuneCountInString(key)
	if length < constants.MinIdempotencyKeyLength || length > constants.MaxIdempotencyKeyLength {
		return IdempotencyKey{}, fmt.Errorf("%w: got %d", ErrInvalidIdempotencyKey, length)
	}

	return IdempotencyKey{value: key}, nil
}

// GenerateIdempotencyKey returns a fresh random 128-bit key rendered as a
// hyphen-grouped hex string.
func GenerateIdempotencyKey() IdempotencyKey {
	return IdempotencyKey{value: uuid.NewString()}
}

// String returns the key as sent in the Idempotency-Key header.
func (k IdempotencyKey) String() string {
	return k.value
}

// IsZero reports whether k was never initialized.
func (k IdempotencyKey) IsZero() bool {
	return k.value == ""
}

// StrategyKind names the variants of RequestStrategy.
type StrategyKind int

// Strategy variants.
const (
	StrategyOnce StrategyKind = iota
	StrategyIdempotent
	StrategyRetry
	StrategyExponentialBackoff
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyOnce:
		return "once"
	case StrategyIdempotent:
		return "idempotent"
	case StrategyRetry:
		return "retry"
	case StrategyExponentialBackoff:
		return "exponential_backoff"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// ClockOverride rewrites a computed delay before the executor waits on it.
type ClockOverride func(delay time.Duration) time.Duration

// NoDelay is a ClockOverride that skips every wait.
func NoDelay(time.Duration) time.Duration {
	return 0
}

// RequestStrategy decides how many attempts a call gets, how long to wait
// between them and which idempotency key, if any, is sent.
//
// The zero value behaves like Once.
type RequestStrategy struct {
	kind     StrategyKind
	attempts int
	key      IdempotencyKey
	clock    ClockOverride
}

// Once makes a single attempt without an idempotency key.
func Once() RequestStrategy {
	return RequestStrategy{kind: StrategyOnce, attempts: 1}
}

// Idempotent makes a single attempt carrying the caller's key.
func Idempotent(key IdempotencyKey) RequestStrategy {
	return RequestStrategy{kind: StrategyIdempotent, attempts: 1, key: key}
}

// Retry makes up to n attempts with a fixed short delay, reusing one
// generated idempotency key across them.
func Retry(n int) RequestStrategy {
	return RequestStrategy{kind: StrategyRetry, attempts: n}
}

// ExponentialBackoff makes up to n attempts with jittered exponential delays,
// reusing one generated idempotency key across them.
func ExponentialBackoff(n int) RequestStrategy {
	return RequestStrategy{kind: StrategyExponentialBackoff, attempts: n}
}

// Kind returns the variant.
func (s RequestStrategy) Kind() StrategyKind {
	return s.kind
}

// Attempts returns the attempt budget, clamped to [1, constants.MaxAttempts].
func (s RequestStrategy) Attempts() int {
	switch {
	case s.attempts < 1:
		return 1
	case s.attempts > constants.MaxAttempts:
		return constants.MaxAttempts
	default:
		return s.attempts
	}
}

// IdempotencyKey resolves the key for a new execution. Retry and
// ExponentialBackoff generate a fresh key on every call, so the executor
// resolves it once and reuses it for every attempt of that execution.
func (s RequestStrategy) IdempotencyKey() (IdempotencyKey, bool) {
	switch s.kind {
	case StrategyIdempotent:
		return s.key, !s.key.IsZero()
	case StrategyRetry, StrategyExponentialBackoff:
		return GenerateIdempotencyKey(), true
	default:
		return IdempotencyKey{}, false
	}
}

// DelayBefore returns how long to wait before the given zero-based attempt.
// The result has already passed through the clock override.
func (s RequestStrategy) DelayBefore(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	var delay time.Duration

	switch s.kind {
	case StrategyRetry:
		delay = constants.RetryFixedDelay
	case StrategyExponentialBackoff:
		delay = backoffDelay(attempt)
	default:
		delay = 0
	}

	return s.TestClockOverride(delay)
}

// WithClockOverride returns a copy of s whose delays pass through clock.
func (s RequestStrategy) WithClockOverride(clock ClockOverride) RequestStrategy {
	s.clock = clock

	return s
}

// TestClockOverride applies the clock override to a delay.
func (s RequestStrategy) TestClockOverride(previousDelay time.Duration) time.Duration {
	if s.clock == nil {
		return previousDelay
	}

	return s.clock(previousDelay)
}

// String describes the strategy without revealing the idempotency key.
func (s RequestStrategy) String() string {
	switch s.kind {
	case StrategyRetry, StrategyExponentialBackoff:
		return fmt.Sprintf("%s(%d)", s.kind, s.Attempts())
	default:
		return s.kind.String()
	}
}

// backoffDelay computes min(cap, base*2^(k-1)) scaled by 1 +/- jitter.
func backoffDelay(attempt int) time.Duration {
	delay := constants.BackoffBaseDelay

	for range attempt - 1 {
		delay *= constants.ExponentialBackoffBase
		if delay >= constants.BackoffMaxDelay {
			delay = constants.BackoffMaxDelay

			break
		}
	}

	jitter := 1 + constants.BackoffJitter*(2*rand.Float64()-1) //nolint:gosec // jitter does not need a CSPRNG

	return time.Duration(float64(delay) * jitter)
}
