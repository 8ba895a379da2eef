// Package usecase implements the gateway's orchestration logic: the rental
// booking saga, the read-side aggregation with fallbacks, the cancel/finish
// flows, and the cars catalog pass-through.
package usecase

import (
	"context"
	"time"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/resilience"
)

// BreakerSettings carries the construction parameters handed to the breaker
// registry on first lookup.
type BreakerSettings struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

// CatalogService proxies the cars listing through the cars breaker. During
// an outage it degrades to an empty page rather than failing the request.
type CatalogService struct {
	Cars     *upstream.CarsClient
	Breakers *resilience.Registry
	Settings BreakerSettings
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(cars *upstream.CarsClient, reg *resilience.Registry, s BreakerSettings) *CatalogService {
	return &CatalogService{Cars: cars, Breakers: reg, Settings: s}
}

// ListCars returns one page of the car inventory.
func (s *CatalogService) ListCars(ctx context.Context, page, size int, showAll bool) (domain.CarsPage, error) {
	br := s.Breakers.Get(resilience.BreakerCars, s.Settings.FailureThreshold, s.Settings.OpenTimeout)
	return resilience.Call(br,
		func() (domain.CarsPage, error) {
			return s.Cars.List(ctx, page, size, showAll)
		},
		func() (domain.CarsPage, error) {
			return domain.CarsPage{Page: page, PageSize: 0, TotalElements: 0, Items: []domain.Car{}}, nil
		})
}
