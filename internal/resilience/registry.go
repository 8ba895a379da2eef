package resilience

import (
	"sync"
	"time"
)

// Canonical breaker names used by the gateway.
const (
	BreakerCars    = "cars_service"
	BreakerRental  = "rental_service"
	BreakerPayment = "payment_service"
)

// Registry hands out one named breaker per upstream, lazily created.
// Parameters are only honored on first lookup; later callers get the
// existing instance untouched.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry constructs an empty breaker registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*Breaker)}
}

// Get returns the breaker registered under name, constructing it with the
// given parameters if it does not exist yet.
func (r *Registry) Get(name string, threshold int, openTimeout time.Duration) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, threshold, openTimeout)
	r.breakers[name] = b
	return b
}

// Snapshot returns the status of every registered breaker.
func (r *Registry) Snapshot() map[string]Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Status, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.Snapshot()
	}
	return out
}
