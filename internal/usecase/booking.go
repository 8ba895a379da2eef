package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/cache"
	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/observability"
)

// BookingService runs the rental-creation saga: fetch car, create payment,
// reserve car, create rental — compensating in-line when a later step fails.
// The saga calls upstreams directly, without breakers: a missing car must
// surface as 404, not be masked by a fallback.
type BookingService struct {
	Cars    *upstream.CarsClient
	Payment *upstream.PaymentClient
	Rental  *upstream.RentalClient
	Cache   cache.CarCache
}

// NewBookingService constructs a BookingService.
func NewBookingService(cars *upstream.CarsClient, payment *upstream.PaymentClient, rental *upstream.RentalClient, cc cache.CarCache) *BookingService {
	return &BookingService{Cars: cars, Payment: payment, Rental: rental, Cache: cc}
}

// CreateRental executes the booking saga for one user. Transport-level
// failure at any step wraps domain.ErrUnavailable; the HTTP layer maps it
// to the platform's uniform 503 outage response. Application-level failures
// map to 404 (car lookup) or 500 (later steps).
func (s *BookingService) CreateRental(ctx context.Context, username string, req domain.CreateRentalRequest) (domain.CreateRentalResponse, error) {
	var zero domain.CreateRentalResponse

	// Step 1: fetch the car and remember its descriptor for fallback reads.
	car, err := s.Cars.Get(ctx, req.CarUID)
	if err != nil {
		if _, ok := upstream.StatusCode(err); ok {
			observability.SagaOutcomesTotal.WithLabelValues("car_not_found").Inc()
			return zero, fmt.Errorf("op=booking.fetch_car: %w: car not found", domain.ErrNotFound)
		}
		observability.SagaOutcomesTotal.WithLabelValues("transport_error").Inc()
		return zero, err
	}
	s.Cache.Put(ctx, car.Info())

	// Step 2: price = whole days × per-day price; same-day rentals are free.
	days, err := domain.RentalDays(req.DateFrom, req.DateTo)
	if err != nil {
		return zero, fmt.Errorf("op=booking.parse_dates: %w", err)
	}
	totalPrice := days * car.Price

	// Step 3: create the payment. Nothing to compensate yet on failure.
	payment, err := s.Payment.Create(ctx, totalPrice)
	if err != nil {
		if _, ok := upstream.StatusCode(err); ok {
			observability.SagaOutcomesTotal.WithLabelValues("payment_failed").Inc()
			return zero, fmt.Errorf("op=booking.create_payment: payment service error: %w", domain.ErrInternal)
		}
		observability.SagaOutcomesTotal.WithLabelValues("transport_error").Inc()
		return zero, err
	}

	// Step 4: reserve the car; on failure void the payment before reporting.
	if err := s.Cars.SetAvailability(ctx, req.CarUID, false); err != nil {
		s.compensatePayment(ctx, payment.PaymentUID)
		if _, ok := upstream.StatusCode(err); ok {
			observability.SagaOutcomesTotal.WithLabelValues("reserve_failed").Inc()
			return zero, fmt.Errorf("op=booking.reserve_car: failed to reserve car: %w", domain.ErrInternal)
		}
		observability.SagaOutcomesTotal.WithLabelValues("transport_error").Inc()
		return zero, err
	}

	// Step 5: create the rental record; on failure release the car and void
	// the payment.
	rental, err := s.Rental.Create(ctx, domain.RentalCreate{
		Username:   username,
		PaymentUID: payment.PaymentUID,
		CarUID:     req.CarUID,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	})
	if err != nil {
		s.compensateReservation(ctx, req.CarUID)
		s.compensatePayment(ctx, payment.PaymentUID)
		if _, ok := upstream.StatusCode(err); ok {
			observability.SagaOutcomesTotal.WithLabelValues("rental_failed").Inc()
			return zero, fmt.Errorf("op=booking.create_rental: rental service error: %w", domain.ErrInternal)
		}
		observability.SagaOutcomesTotal.WithLabelValues("transport_error").Inc()
		return zero, err
	}

	observability.SagaOutcomesTotal.WithLabelValues("created").Inc()
	return domain.CreateRentalResponse{
		RentalUID: rental.RentalUID,
		Status:    rental.Status,
		CarUID:    req.CarUID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Payment:   payment,
	}, nil
}

// compensatePayment voids a payment best-effort. Creation-path compensation
// failures are logged only; the saga error already dominates the response.
func (s *BookingService) compensatePayment(ctx context.Context, paymentUID string) {
	if err := s.Payment.Cancel(ctx, paymentUID); err != nil {
		slog.Error("payment compensation failed",
			slog.String("payment_uid", paymentUID),
			slog.Any("error", err))
	}
}

// compensateReservation releases a reserved car best-effort.
func (s *BookingService) compensateReservation(ctx context.Context, carUID string) {
	if err := s.Cars.SetAvailability(ctx, carUID, true); err != nil {
		slog.Error("car release compensation failed",
			slog.String("car_uid", carUID),
			slog.Any("error", err))
	}
}
