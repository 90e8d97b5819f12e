package stripe

import (
	"context"
	"encoding/json"
	"iter"
	"strings"

	"github.com/fivetwenty-io/stripe-client/pkg/form"
)

// ListPaginator walks a cursor-paginated list endpoint one element at a time,
// fetching the next page with starting_after set to the id of the last element
// of the previous page.
//
// A paginator is not safe for concurrent use. Page requests are issued
// strictly one after another.
type ListPaginator[T Identifiable] struct {
	backend  Backend
	method   Method
	path     string
	base     form.Pairs
	strategy *RequestStrategy
	err      error

	page    []T
	index   int
	cursor  string
	fetched bool
	hasMore bool
	done    bool
}

// NewListPaginator creates a paginator over the list request req. The first
// page is requested with the parameters exactly as given; later pages replace
// any cursor parameters with starting_after.
func NewListPaginator[T Identifiable](backend Backend, req StripeRequest[Envelope[T]]) *ListPaginator[T] {
	descriptor := req.StripeRequest()

	paginator := &ListPaginator[T]{
		backend:  backend,
		method:   descriptor.Method(),
		path:     descriptor.Path(),
		strategy: descriptor.strategy,
	}

	call, err := descriptor.call()
	if err != nil {
		paginator.err = err

		return paginator
	}

	paginator.base = call.Params

	return paginator
}

// Next returns the next element across all pages. The boolean is false once
// the list is exhausted; exhaustion is terminal. An error leaves the cursor
// where it was, so calling Next again repeats the failed page request.
func (p *ListPaginator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	for {
		if p.index < len(p.page) {
			item := p.page[p.index]
			p.index++

			return item, true, nil
		}

		if p.done || (p.fetched && !p.hasMore) {
			p.done = true
			p.page = nil

			return zero, false, nil
		}

		err := p.fetch(ctx)
		if err != nil {
			return zero, false, err
		}
	}
}

// CollectUpTo returns at most n elements. On error it returns the elements
// collected before the failure together with the error.
func (p *ListPaginator[T]) CollectUpTo(ctx context.Context, n int) ([]T, error) {
	items := make([]T, 0, min(max(n, 0), len(p.page)-p.index+1))

	for len(items) < n {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return items, err
		}

		if !ok {
			break
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach calls fn for every remaining element, stopping at the first error.
func (p *ListPaginator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for item, err := range p.All(ctx) {
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// All returns an iterator over the remaining elements. Iteration stops after
// yielding the first error.
func (p *ListPaginator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, ok, err := p.Next(ctx)
			if err != nil {
				yield(item, err)

				return
			}

			if !ok || !yield(item, nil) {
				return
			}
		}
	}
}

// Done reports whether the paginator is exhausted.
func (p *ListPaginator[T]) Done() bool {
	return p.done
}

func (p *ListPaginator[T]) fetch(ctx context.Context) error {
	params := p.base
	if p.fetched {
		params = p.base.Without(paramStartingAfter, paramEndingBefore).With(paramStartingAfter, p.cursor)
	}

	resp, err := p.backend.Call(ctx, &Call{
		Method:   p.method,
		Path:     p.path,
		Params:   params,
		Strategy: p.strategy,
	})
	if err != nil {
		return err
	}

	var envelope Envelope[T]

	err = json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return NewDecodeError(resp.StatusCode, err)
	}

	if envelope.HasMore && len(envelope.Data) == 0 {
		return NewDecodeError(resp.StatusCode, ErrInvalidPage)
	}

	p.page = envelope.Data
	p.index = 0
	p.fetched = true
	p.hasMore = envelope.HasMore

	if len(envelope.Data) > 0 {
		p.cursor = envelope.Data[len(envelope.Data)-1].GetID()
	}

	if strings.HasPrefix(envelope.URL, "/") {
		p.path = envelope.URL
	}

	return nil
}
