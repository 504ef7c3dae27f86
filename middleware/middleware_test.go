package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_ConvertsPanic(t *testing.T) {
	err := Recover("boom", func() error {
		panic("kaboom")
	})

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "kaboom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestRecover_PassesThroughErrors(t *testing.T) {
	want := errors.New("plain")
	assert.Equal(t, want, Recover("plain", func() error { return want }))
	assert.NoError(t, Recover("ok", func() error { return nil }))
}

func TestBreaker_TripsAfterFailures(t *testing.T) {
	cb := NewBreaker("test", BreakerSettings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour})
	failing := errors.New("upstream down")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, WithCircuitBreaker(ctx, cb, func() error { return failing }), failing)
	}

	called := false
	err := WithCircuitBreaker(ctx, cb, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestBreaker_CanceledContextSkipsCall(t *testing.T) {
	cb := NewBreaker("ctx", BreakerSettings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithCircuitBreaker(ctx, cb, func() error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
