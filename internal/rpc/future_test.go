package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoResolvesWaitAndCallback(t *testing.T) {
	got := make(chan json.RawMessage, 1)
	f := Go(func() (json.RawMessage, error) {
		return json.RawMessage(`{"ok":true}`), nil
	}, func(resp json.RawMessage, err error) {
		assert.NoError(t, err)
		got <- resp
	})

	resp, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp))

	select {
	case cbResp := <-got:
		assert.JSONEq(t, `{"ok":true}`, string(cbResp))
	case <-time.After(time.Second):
		t.Fatal("callback was not called")
	}
}

func TestGoPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := Go(func() (json.RawMessage, error) { return nil, boom }, nil)

	resp, err := f.Wait(context.Background())
	assert.Same(t, boom, err)
	assert.Nil(t, resp)
}

func TestFailedCallsBackBeforeReturning(t *testing.T) {
	var called bool
	f := Failed(assert.AnError, func(resp json.RawMessage, err error) {
		called = true
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, assert.AnError)
	})
	assert.True(t, called)

	select {
	case <-f.Done():
	default:
		t.Fatal("future should already be done")
	}
	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWaitStopsOnContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := Go(func() (json.RawMessage, error) {
		<-release
		return nil, nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThen(t *testing.T) {
	f := Go(func() (json.RawMessage, error) { return json.RawMessage(`1`), nil }, nil)

	got := make(chan string, 1)
	f.Then(func(resp json.RawMessage, err error) {
		assert.NoError(t, err)
		got <- string(resp)
	})

	select {
	case v := <-got:
		assert.Equal(t, "1", v)
	case <-time.After(time.Second):
		t.Fatal("then callback was not called")
	}
}
