package errors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_StopsOnSuccess(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return NewPlannerTransportError(assert.AnError)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetry_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return ErrRouteNotFound
	})

	assert.ErrorIs(t, err, ErrRouteNotFound)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ExhaustsBudget(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return NewPlannerTransportError(assert.AnError)
	})

	require.Error(t, err)
	assert.Equal(t, MaxRetries+1, attempts)
}

func TestWithRetry_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithRetry(ctx, func() error {
		attempts++
		cancel()
		return NewPlannerTransportError(assert.AnError)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(ErrStationUnresolved))
	assert.False(t, IsRetryable(NewSessionError("boom")))
	assert.True(t, IsRetryable(NewPlannerTransportError(assert.AnError)))
	assert.True(t, IsRetryable(NewStoreError(assert.AnError)))
}

func TestCircuitBreaker_TripsAfterErrorRate(t *testing.T) {
	cb := NewCircuitBreaker(time.Minute)

	for i := 0; i < MinRequests; i++ {
		_ = cb.Call(func() error { return assert.AnError })
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
}

func TestCircuitBreaker_StaysClosedUnderMinRequests(t *testing.T) {
	cb := NewCircuitBreaker(time.Minute)

	for i := 0; i < MinRequests-1; i++ {
		_ = cb.Call(func() error { return assert.AnError })
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(10 * time.Millisecond)

	for i := 0; i < MinRequests; i++ {
		_ = cb.Call(func() error { return assert.AnError })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	for i := 0; i < HalfOpenMaxRequests; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(10 * time.Millisecond)

	for i := 0; i < MinRequests; i++ {
		_ = cb.Call(func() error { return assert.AnError })
	}

	time.Sleep(20 * time.Millisecond)

	assert.Error(t, cb.Call(func() error { return assert.AnError }))
	assert.Equal(t, StateOpen, cb.State())
}
