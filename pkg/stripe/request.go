package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/stripe-client/pkg/form"
)

// Method is the HTTP method of a Stripe call.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodDelete Method = http.MethodDelete
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m == MethodGet || m == MethodPost || m == MethodDelete
}

// Request describes one outbound call whose successful response decodes into T.
// Requests are immutable: WithStrategy returns a copy.
type Request[T any] struct {
	method   Method
	path     string
	params   any
	strategy *RequestStrategy
}

// StripeRequest is implemented by every request builder. The result type T
// ties the builder to the decoder applied to its response.
type StripeRequest[T any] interface {
	StripeRequest() *Request[T]
}

// NewRequest builds a request for path, which must already contain its path ids.
// params may be nil, a struct, a map or a *form.Map.
func NewRequest[T any](method Method, path string, params any) *Request[T] {
	return &Request[T]{method: method, path: path, params: params}
}

// StripeRequest implements StripeRequest.
func (r *Request[T]) StripeRequest() *Request[T] {
	return r
}

// WithStrategy returns a copy of r that overrides the client's default strategy.
func (r *Request[T]) WithStrategy(strategy RequestStrategy) *Request[T] {
	clone := *r
	clone.strategy = &strategy

	return &clone
}

// Method returns the HTTP method.
func (r *Request[T]) Method() Method {
	return r.method
}

// Path returns the API path.
func (r *Request[T]) Path() string {
	return r.path
}

// Params returns the unencoded parameters.
func (r *Request[T]) Params() any {
	return r.params
}

// Strategy returns the override strategy, if any.
func (r *Request[T]) Strategy() (RequestStrategy, bool) {
	if r.strategy == nil {
		return RequestStrategy{}, false
	}

	return *r.strategy, true
}

// EncodeParams flattens the parameters into form pairs. Repeated calls return
// identical output.
func (r *Request[T]) EncodeParams() (form.Pairs, error) {
	pairs, err := form.Encode(r.params)
	if err != nil {
		return nil, NewSerializeError(err)
	}

	return pairs, nil
}

// call lowers r into the untyped form the backend executes.
func (r *Request[T]) call() (*Call, error) {
	if !r.method.Valid() {
		return nil, NewSerializeError(fmt.Errorf("%w: %q", ErrUnsupportedMethod, r.method))
	}

	pairs, err := r.EncodeParams()
	if err != nil {
		return nil, err
	}

	return &Call{Method: r.method, Path: r.path, Params: pairs, Strategy: r.strategy}, nil
}

// Execute performs req through backend and decodes the response into T.
// This is the entry point generated request builders funnel through.
func Execute[T any](ctx context.Context, backend Backend, req StripeRequest[T]) (T, error) {
	var result T

	call, err := req.StripeRequest().call()
	if err != nil {
		return result, err
	}

	resp, err := backend.Call(ctx, call)
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return result, NewDecodeError(resp.StatusCode, err)
	}

	return result, nil
}
