package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/resilience"
)

// LifecycleService handles the cancel and finish flows. The rental-side
// mutation decides the API outcome; the follow-up compensations (release
// car, cancel payment) are attempted in-line and handed to the retry queue
// when they fail. It also implements resilience.Executor so the queue can
// re-run those compensations later.
type LifecycleService struct {
	Cars    *upstream.CarsClient
	Payment *upstream.PaymentClient
	Rental  *upstream.RentalClient
	Queue   *resilience.RetryQueue
}

// NewLifecycleService constructs a LifecycleService. Call BindQueue before
// serving traffic; the queue needs the service as its executor, so the two
// are wired in two steps.
func NewLifecycleService(cars *upstream.CarsClient, payment *upstream.PaymentClient, rental *upstream.RentalClient) *LifecycleService {
	return &LifecycleService{Cars: cars, Payment: payment, Rental: rental}
}

// BindQueue attaches the retry queue used for failed compensations.
func (s *LifecycleService) BindQueue(q *resilience.RetryQueue) { s.Queue = q }

// CancelRental cancels a rental, then releases the car and voids the
// payment. The 204 is owed as soon as the rental-service cancellation
// succeeds; compensation failures are queued, not surfaced.
func (s *LifecycleService) CancelRental(ctx context.Context, username, rentalUID string) error {
	rec, err := s.getRental(ctx, username, rentalUID)
	if err != nil {
		return err
	}

	if err := s.Rental.Cancel(ctx, rentalUID, username); err != nil {
		return fmt.Errorf("op=lifecycle.cancel: failed to cancel rental: %w", domain.ErrInternal)
	}

	s.releaseCar(ctx, rec.CarUID)
	s.cancelPayment(ctx, rec.PaymentUID)
	return nil
}

// FinishRental completes a rental and releases the car. Finishing does not
// refund, so the payment is left untouched.
func (s *LifecycleService) FinishRental(ctx context.Context, username, rentalUID string) error {
	rec, err := s.getRental(ctx, username, rentalUID)
	if err != nil {
		return err
	}

	if err := s.Rental.Finish(ctx, rentalUID, username); err != nil {
		return fmt.Errorf("op=lifecycle.finish: failed to finish rental: %w", domain.ErrInternal)
	}

	s.releaseCar(ctx, rec.CarUID)
	return nil
}

// Execute dispatches a queued compensation. This is the retry queue's single
// interpretation point for the tagged task variants.
func (s *LifecycleService) Execute(ctx context.Context, c resilience.Compensation) error {
	switch c.Kind {
	case resilience.CompensationReleaseCar:
		return s.Cars.SetAvailability(ctx, c.CarUID, true)
	case resilience.CompensationCancelPayment:
		return s.Payment.Cancel(ctx, c.PaymentUID)
	default:
		return fmt.Errorf("op=lifecycle.execute: unknown compensation kind %q", c.Kind)
	}
}

func (s *LifecycleService) getRental(ctx context.Context, username, rentalUID string) (domain.RentalRecord, error) {
	rec, err := s.Rental.Get(ctx, rentalUID, username)
	if err != nil {
		if code, ok := upstream.StatusCode(err); ok && code == 404 {
			return domain.RentalRecord{}, fmt.Errorf("op=lifecycle.get_rental: %w: rental not found", domain.ErrNotFound)
		}
		return domain.RentalRecord{}, err
	}
	return rec, nil
}

func (s *LifecycleService) releaseCar(ctx context.Context, carUID string) {
	if err := s.Cars.SetAvailability(ctx, carUID, true); err != nil {
		slog.Warn("car release failed, queuing for retry",
			slog.String("car_uid", carUID),
			slog.Any("error", err))
		s.Queue.Submit(resilience.Compensation{Kind: resilience.CompensationReleaseCar, CarUID: carUID})
	}
}

func (s *LifecycleService) cancelPayment(ctx context.Context, paymentUID string) {
	if err := s.Payment.Cancel(ctx, paymentUID); err != nil {
		slog.Warn("payment cancel failed, queuing for retry",
			slog.String("payment_uid", paymentUID),
			slog.Any("error", err))
		s.Queue.Submit(resilience.Compensation{Kind: resilience.CompensationCancelPayment, PaymentUID: paymentUID})
	}
}
