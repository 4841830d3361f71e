package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler serves the methods of one endpoint. Args arrive in their JSON form.
type Handler interface {
	ServeRPC(ctx context.Context, method string, args []json.RawMessage) (any, error)
}

// Mux is an in-process Caller. Arguments and results are round-tripped
// through JSON so handlers see exactly what a remote peer would.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      zerolog.Logger
}

func NewMux(log zerolog.Logger) *Mux {
	return &Mux{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Handle registers h for endpoint, replacing any previous handler.
func (m *Mux) Handle(endpoint string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[endpoint] = h
}

func (m *Mux) Call(ctx context.Context, endpoint, method string, args []any, opts Options) (json.RawMessage, error) {
	m.mu.RLock()
	h, ok := m.handlers[endpoint]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	wire := make([]json.RawMessage, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("encode %s arg %d: %w", method, i, err)
		}
		wire[i] = b
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type outcome struct {
		resp any
		err  error
	}
	start := time.Now()
	ch := make(chan outcome, 1)
	go func() {
		resp, err := h.ServeRPC(ctx, method, wire)
		ch <- outcome{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		m.log.Warn().
			Str("endpoint", endpoint).
			Str("method", method).
			Dur("latency", time.Since(start)).
			Msg("rpc call abandoned")
		return nil, fmt.Errorf("%s %s: %w", endpoint, method, ctx.Err())
	case out := <-ch:
		m.log.Debug().
			Str("endpoint", endpoint).
			Str("method", method).
			Dur("latency", time.Since(start)).
			Bool("ok", out.err == nil).
			Msg("rpc call finished")
		if out.err != nil {
			return nil, out.err
		}
		b, err := json.Marshal(out.resp)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", method, err)
		}
		return b, nil
	}
}

var _ Caller = (*Mux)(nil)
