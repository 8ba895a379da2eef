// Package resilience implements the gateway's failure-handling machinery:
// per-upstream circuit breakers with fallback injection and the background
// retry queue for best-effort compensations.
package resilience

import (
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/observability"
)

// State represents the state of a circuit breaker.
type State int

const (
	// StateClosed means calls flow through to the upstream.
	StateClosed State = iota
	// StateOpen means calls are short-circuited to the fallback.
	StateOpen
	// StateHalfOpen means a single probe call is allowed through.
	StateHalfOpen
)

// String returns the canonical state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker guards one upstream by consecutive-failure count. Any error
// returned by the guarded action counts as a failure, including HTTP 4xx
// the caller chose to surface as an error; a burst of 404s will trip it.
type Breaker struct {
	name        string
	threshold   int
	openTimeout time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

// NewBreaker constructs a closed breaker with the given trip threshold and
// open timeout.
func NewBreaker(name string, threshold int, openTimeout time.Duration) *Breaker {
	return &Breaker{name: name, threshold: threshold, openTimeout: openTimeout}
}

// Name returns the breaker's upstream name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Status is a point-in-time view of a breaker for introspection endpoints.
type Status struct {
	Name        string     `json:"name"`
	State       string     `json:"state"`
	Failures    int        `json:"failures"`
	LastFailure *time.Time `json:"lastFailureAt,omitempty"`
}

// Snapshot returns the breaker's current status.
func (b *Breaker) Snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := Status{Name: b.name, State: b.state.String(), Failures: b.failures}
	if !b.lastFailure.IsZero() {
		t := b.lastFailure
		st.LastFailure = &t
	}
	return st
}

// allow decides whether the action may run. Called with the lock held by
// Call; returns false when the breaker is open and inside its timeout.
func (b *Breaker) allow() bool {
	if b.state != StateOpen {
		return true
	}
	if time.Since(b.lastFailure) >= b.openTimeout {
		b.state = StateHalfOpen
		return true
	}
	return false
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
	observability.BreakerState.WithLabelValues(b.name).Set(float64(b.state))
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = time.Now()
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		if b.state != StateOpen {
			observability.BreakerTripsTotal.WithLabelValues(b.name).Inc()
		}
		b.state = StateOpen
	}
	observability.BreakerState.WithLabelValues(b.name).Set(float64(b.state))
}

// Call runs action under the breaker. When the breaker is open the action is
// skipped and fallback (if non-nil) is invoked instead; without a fallback
// the call fails with domain.ErrBreakerOpen. When the action fails and a
// fallback is present, the failure is recorded and the fallback's result is
// returned. Fallback invocations never touch the failure accounting.
func Call[T any](b *Breaker, action func() (T, error), fallback func() (T, error)) (T, error) {
	b.mu.Lock()
	if !b.allow() {
		b.mu.Unlock()
		if fallback != nil {
			observability.FallbacksTotal.WithLabelValues(b.name).Inc()
			return fallback()
		}
		var zero T
		return zero, fmt.Errorf("op=breaker.call name=%s: %w", b.name, domain.ErrBreakerOpen)
	}
	b.mu.Unlock()

	// The action runs outside the lock; it is typically a 5s-bounded HTTP
	// call and must not serialize unrelated handlers.
	res, err := action()
	if err != nil {
		b.onFailure()
		if fallback != nil {
			observability.FallbacksTotal.WithLabelValues(b.name).Inc()
			return fallback()
		}
		var zero T
		return zero, err
	}
	b.onSuccess()
	return res, nil
}
