package rpc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(ctx context.Context, method string, args []json.RawMessage) (any, error)

func (f handlerFunc) ServeRPC(ctx context.Context, method string, args []json.RawMessage) (any, error) {
	return f(ctx, method, args)
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestMuxRoundTripsJSON(t *testing.T) {
	mux := NewMux(zerolog.Nop())
	mux.Handle("svc", handlerFunc(func(ctx context.Context, method string, args []json.RawMessage) (any, error) {
		assert.Equal(t, "sum", method)
		if !assert.Len(t, args, 2) {
			return nil, assert.AnError
		}
		assert.JSONEq(t, `"label"`, string(args[0]))

		var p point
		if err := json.Unmarshal(args[1], &p); err != nil {
			return nil, err
		}
		return map[string]int{"sum": p.X + p.Y}, nil
	}))

	resp, err := mux.Call(context.Background(), "svc", "sum", []any{"label", point{X: 2, Y: 3}}, Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sum":5}`, string(resp))
}

func TestMuxUnknownEndpoint(t *testing.T) {
	mux := NewMux(zerolog.Nop())
	_, err := mux.Call(context.Background(), "missing", "m", nil, Options{})
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestMuxPassesHandlerErrorThrough(t *testing.T) {
	mux := NewMux(zerolog.Nop())
	mux.Handle("svc", handlerFunc(func(context.Context, string, []json.RawMessage) (any, error) {
		return nil, assert.AnError
	}))

	_, err := mux.Call(context.Background(), "svc", "m", nil, Options{})
	assert.Same(t, assert.AnError, err)
}

func TestMuxTimeout(t *testing.T) {
	mux := NewMux(zerolog.Nop())
	release := make(chan struct{})
	defer close(release)
	mux.Handle("svc", handlerFunc(func(ctx context.Context, _ string, _ []json.RawMessage) (any, error) {
		<-release
		return "late", nil
	}))

	start := time.Now()
	_, err := mux.Call(context.Background(), "svc", "slow", nil, Options{Timeout: 20 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMuxRejectsUnencodableArgs(t *testing.T) {
	mux := NewMux(zerolog.Nop())
	mux.Handle("svc", handlerFunc(func(context.Context, string, []json.RawMessage) (any, error) {
		t.Error("handler should not run")
		return nil, nil
	}))

	_, err := mux.Call(context.Background(), "svc", "m", []any{make(chan int)}, Options{})
	assert.Error(t, err)
}
