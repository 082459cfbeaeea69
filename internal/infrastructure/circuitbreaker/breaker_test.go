package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/pkg/config"
)

func testConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 0.5,
	}
}

func TestBreaker_TripsAfterFailures(t *testing.T) {
	b := New("email", testConfig(), zap.NewNop())
	ctx := context.Background()
	boom := errors.New("provider down")

	assert.ErrorIs(t, b.Execute(ctx, func(context.Context) error { return boom }), boom)
	assert.Equal(t, gobreaker.StateClosed, b.State())

	assert.ErrorIs(t, b.Execute(ctx, func(context.Context) error { return boom }), boom)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.True(t, IsOpen(err))
	assert.False(t, called)
}

func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	b := New("email", testConfig(), zap.NewNop())

	for i := 0; i < 5; i++ {
		assert.NoError(t, b.Execute(context.Background(), func(context.Context) error { return nil }))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_CancelledContext(t *testing.T) {
	b := New("email", testConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
