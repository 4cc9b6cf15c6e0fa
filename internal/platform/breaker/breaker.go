// Package breaker wraps upstream calls in a circuit breaker so a dead
// bookseller or AI endpoint fails fast instead of holding requests open.
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/metrics"
)

// ErrUnavailable is returned while the circuit is open.
var ErrUnavailable = errors.New("upstream temporarily unavailable")

// Settings tunes a breaker. Zero values fall back to the defaults below.
type Settings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	Timeout      time.Duration
}

// Breaker guards calls to a single upstream.
type Breaker[T any] struct {
	name string
	cb   *gobreaker.CircuitBreaker[T]
}

// New creates a breaker named after the upstream it protects.
func New[T any](name string, s Settings) *Breaker[T] {
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Breaker[T]{name: name, cb: cb}
}

// Execute runs fn through the breaker. Rejections are reported as
// ErrUnavailable.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	start := time.Now()
	res, err := b.cb.Execute(fn)

	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
		err = ErrUnavailable
	case err != nil:
		outcome = "failure"
	}
	metrics.UpstreamRequestDuration.WithLabelValues(b.name, outcome).Observe(time.Since(start).Seconds())
	return res, err
}

// State reports the current breaker state as "closed", "half-open" or "open".
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
