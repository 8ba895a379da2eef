// Package cache provides the car fallback cache: a last-writer-wins mapping
// from carUid to the descriptor most recently observed from the cars
// service. It is written on every successful car fetch and read only on
// fallback paths. Entries are never invalidated.
package cache

import (
	"context"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// CarCache stores car descriptors for degraded responses during cars
// service outages.
type CarCache interface {
	// Put records the descriptor for its carUid, overwriting any prior entry.
	Put(ctx context.Context, info domain.CarInfo)
	// Get returns the cached descriptor and whether one exists.
	Get(ctx context.Context, carUID string) (domain.CarInfo, bool)
	// Entries returns a copy of the full mapping for introspection.
	Entries(ctx context.Context) map[string]domain.CarInfo
}
