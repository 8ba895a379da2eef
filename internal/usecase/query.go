package usecase

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/cache"
	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/resilience"
)

// QueryService joins rental records with car and payment details. Every
// upstream fetch goes through its breaker; car and payment details degrade
// to fallbacks so a single slow backend cannot take down the read path.
type QueryService struct {
	Cars     *upstream.CarsClient
	Payment  *upstream.PaymentClient
	Rental   *upstream.RentalClient
	Cache    cache.CarCache
	Breakers *resilience.Registry
	Settings BreakerSettings
}

// NewQueryService constructs a QueryService.
func NewQueryService(cars *upstream.CarsClient, payment *upstream.PaymentClient, rental *upstream.RentalClient, cc cache.CarCache, reg *resilience.Registry, s BreakerSettings) *QueryService {
	return &QueryService{Cars: cars, Payment: payment, Rental: rental, Cache: cc, Breakers: reg, Settings: s}
}

// ListRentals returns the aggregated rentals of one user. A rental service
// outage degrades to an empty list.
func (s *QueryService) ListRentals(ctx context.Context, username string) ([]domain.RentalResponse, error) {
	br := s.Breakers.Get(resilience.BreakerRental, s.Settings.FailureThreshold, s.Settings.OpenTimeout)
	rentals, err := resilience.Call(br,
		func() ([]domain.RentalRecord, error) {
			return s.Rental.ListByUsername(ctx, username)
		},
		func() ([]domain.RentalRecord, error) {
			return []domain.RentalRecord{}, nil
		})
	if err != nil {
		return nil, err
	}

	out := make([]domain.RentalResponse, 0, len(rentals))
	for _, rec := range rentals {
		out = append(out, s.aggregate(ctx, rec))
	}
	return out, nil
}

// GetRental returns one aggregated rental. A missing rental propagates as
// 404: the rental lookup runs without a fallback.
func (s *QueryService) GetRental(ctx context.Context, username, rentalUID string) (domain.RentalResponse, error) {
	br := s.Breakers.Get(resilience.BreakerRental, s.Settings.FailureThreshold, s.Settings.OpenTimeout)
	rec, err := resilience.Call(br,
		func() (domain.RentalRecord, error) {
			return s.Rental.Get(ctx, rentalUID, username)
		}, nil)
	if err != nil {
		if code, ok := upstream.StatusCode(err); ok && code == 404 {
			return domain.RentalResponse{}, fmt.Errorf("op=query.get_rental: %w: rental not found", domain.ErrNotFound)
		}
		return domain.RentalResponse{}, err
	}
	return s.aggregate(ctx, rec), nil
}

// aggregate fans out to the cars and payment services for one rental record,
// falling back to the car cache and a zero-priced PAID stub respectively.
func (s *QueryService) aggregate(ctx context.Context, rec domain.RentalRecord) domain.RentalResponse {
	carsBr := s.Breakers.Get(resilience.BreakerCars, s.Settings.FailureThreshold, s.Settings.OpenTimeout)
	carInfo, _ := resilience.Call(carsBr,
		func() (domain.CarInfo, error) {
			car, err := s.Cars.Get(ctx, rec.CarUID)
			if err != nil {
				return domain.CarInfo{}, err
			}
			s.Cache.Put(ctx, car.Info())
			return car.Info(), nil
		},
		func() (domain.CarInfo, error) {
			if cached, ok := s.Cache.Get(ctx, rec.CarUID); ok {
				return cached, nil
			}
			return domain.CarInfo{CarUID: rec.CarUID}, nil
		})

	payBr := s.Breakers.Get(resilience.BreakerPayment, s.Settings.FailureThreshold, s.Settings.OpenTimeout)
	payment, _ := resilience.Call(payBr,
		func() (domain.Payment, error) {
			return s.Payment.Get(ctx, rec.PaymentUID)
		},
		func() (domain.Payment, error) {
			return domain.Payment{PaymentUID: rec.PaymentUID, Status: domain.PaymentPaid, Price: 0}, nil
		})

	return domain.RentalResponse{
		RentalUID: rec.RentalUID,
		Status:    rec.Status,
		DateFrom:  rec.DateFrom,
		DateTo:    rec.DateTo,
		Car:       carInfo,
		Payment:   payment,
	}
}
