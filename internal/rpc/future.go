package rpc

import (
	"context"
	"encoding/json"
)

// Callback receives the outcome of an operation exactly once.
type Callback func(resp json.RawMessage, err error)

// Future is the pending outcome of an operation. It can be awaited with Wait,
// observed with Then, or both.
type Future struct {
	done chan struct{}
	resp json.RawMessage
	err  error
}

// Go runs fn in its own goroutine. cb, when not nil, is called once fn returns.
func Go(fn func() (json.RawMessage, error), cb Callback) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		resp, err := fn()
		f.resolve(resp, err)
		if cb != nil {
			cb(resp, err)
		}
	}()
	return f
}

// Failed returns a future that has already failed with err. cb, when not nil,
// is called before Failed returns.
func Failed(err error, cb Callback) *Future {
	f := &Future{done: make(chan struct{})}
	f.resolve(nil, err)
	if cb != nil {
		cb(nil, err)
	}
	return f
}

func (f *Future) resolve(resp json.RawMessage, err error) {
	f.resp = resp
	f.err = err
	close(f.done)
}

// Done is closed once the outcome is known.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the outcome is known or ctx ends. Giving up on ctx does
// not cancel the underlying call.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then registers cb to run after the outcome is known.
func (f *Future) Then(cb Callback) {
	go func() {
		<-f.done
		cb(f.resp, f.err)
	}()
}
