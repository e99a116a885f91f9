package circuitbreaker

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

type (
	// CircuitBreaker guards calls to a flaky dependency such as the Redis cache.
	CircuitBreaker[T any] struct {
		cb *gobreaker.CircuitBreaker[T]
	}

	// StateChangeFunc observes transitions, e.g. "closed" to "open".
	StateChangeFunc func(name, from, to string)

	Option func(*gobreaker.Settings)
)

// WithStateChange registers fn to be called on every state transition.
func WithStateChange(fn StateChangeFunc) Option {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			fn(name, from.String(), to.String())
		}
	}
}

// WithIgnoredErrors keeps expected errors, like a cache miss, from counting as failures.
func WithIgnoredErrors(ignored ...error) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = func(err error) bool {
			if err == nil {
				return true
			}

			for _, target := range ignored {
				if errors.Is(err, target) {
					return true
				}
			}

			return false
		}
	}
}

// New returns nil when the breaker is disabled; Execute treats nil as pass-through.
func New[T any](cfg Config, opts ...Option) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	threshold := max(cfg.FailureThreshold, 1)

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
	}

	for _, opt := range opts {
		opt(&settings)
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}

func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T

		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T

		return zero, ErrTooManyRequests
	}

	return result, err
}
