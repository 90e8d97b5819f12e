package stripe_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

type fakeReply struct {
	status int
	body   string
	err    error
}

// fakeBackend replays canned replies in order and records every call.
type fakeBackend struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   []stripe.Call
}

func newFakeBackend(replies ...fakeReply) *fakeBackend {
	return &fakeBackend{replies: replies}
}

func (f *fakeBackend) Call(ctx context.Context, call *stripe.Call) (*stripe.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, *call)

	if len(f.replies) == 0 {
		return &stripe.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
	}

	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}

	if reply.err != nil {
		return nil, reply.err
	}

	return &stripe.Response{StatusCode: reply.status, Body: []byte(reply.body)}, nil
}

func (f *fakeBackend) recorded() []stripe.Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]stripe.Call(nil), f.calls...)
}
