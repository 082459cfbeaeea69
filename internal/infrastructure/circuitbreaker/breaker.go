package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/pkg/config"
)

// Breaker guards calls to an outbound dependency such as the email provider.
type Breaker struct {
	cb  *gobreaker.CircuitBreaker
	log *zap.Logger
}

// Settings builds gobreaker settings from config. The circuit trips once at
// least MaxRequests calls were seen in the interval and the failure ratio
// reaches FailureThreshold.
func Settings(name string, cfg config.CircuitBreakerConfig, log *zap.Logger) gobreaker.Settings {
	minRequests := uint32(cfg.MaxRequests)
	if minRequests == 0 {
		minRequests = 1
	}
	threshold := cfg.FailureThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	return gobreaker.Settings{
		Name:        name,
		MaxRequests: minRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
}

func New(name string, cfg config.CircuitBreakerConfig, log *zap.Logger) *Breaker {
	return &Breaker{
		cb:  gobreaker.NewCircuitBreaker(Settings(name, cfg, log)),
		log: log,
	}
}

// Execute runs fn unless the circuit is open. A cancelled context fails fast
// without counting against the dependency.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	if IsOpen(err) {
		b.log.Warn("Circuit breaker open, call rejected", zap.String("breaker", b.cb.Name()))
	}
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// IsOpen reports whether err was returned because the circuit rejected the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
