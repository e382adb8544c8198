package resilience

import (
	"context"
	"time"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"github.com/sony/gobreaker"
)

// Breaker wraps a single external dependency (a backtest backend, an LLM
// provider) in a gobreaker circuit breaker, opening after a run of
// consecutive failures to stop hammering a dependency that is already down.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker builds a Breaker named name that opens after
// consecutiveFailures in a row and stays open for cooldown before
// allowing a single trial request through (half-open).
func NewBreaker(name string, consecutiveFailures uint32, cooldown time.Duration) *Breaker {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker, translating an open-circuit
// rejection into an *apperrors.AppError of type timeout (the caller
// should treat it the same way as a dependency that didn't answer).
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeTimeout, "circuit breaker open, dependency unavailable")
	}
	return result, err
}

// State reports the breaker's current state for diagnostics/metrics.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
