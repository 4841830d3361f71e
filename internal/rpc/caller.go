// Package rpc defines the remote-call capability the gateway dispatches
// through and the future used to hand results back to callers.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrUnknownEndpoint = errors.New("unknown rpc endpoint")
	ErrUnknownMethod   = errors.New("unknown rpc method")
)

// Options travel with every call.
type Options struct {
	Timeout time.Duration
}

// Caller sends positional args to a named method on a remote endpoint.
type Caller interface {
	Call(ctx context.Context, endpoint, method string, args []any, opts Options) (json.RawMessage, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, endpoint, method string, args []any, opts Options) (json.RawMessage, error)

func (f CallerFunc) Call(ctx context.Context, endpoint, method string, args []any, opts Options) (json.RawMessage, error) {
	return f(ctx, endpoint, method, args, opts)
}
