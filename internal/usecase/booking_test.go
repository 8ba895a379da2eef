package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/cache"
	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/usecase"
)

func bookingRequest() domain.CreateRentalRequest {
	return domain.CreateRentalRequest{
		CarUID:   testCarUID,
		DateFrom: "2026-09-01",
		DateTo:   "2026-09-03",
	}
}

func TestBooking_HappyPath(t *testing.T) {
	t.Parallel()
	cars := newCarsBackend(t, availableCar())
	payment := newPaymentBackend(t)
	rental := newRentalBackend(t)
	cc := cache.NewMemory()

	svc := usecase.NewBookingService(cars.client(t), payment.client(t), rental.client(t), cc)
	resp, err := svc.CreateRental(context.Background(), "alice", bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, testRentalUID, resp.RentalUID)
	assert.Equal(t, domain.RentalInProgress, resp.Status)
	assert.Equal(t, testCarUID, resp.CarUID)
	// Two whole days at 3500 per day.
	assert.Equal(t, 7000, resp.Payment.Price)
	assert.Equal(t, domain.PaymentPaid, resp.Payment.Status)

	// The car got reserved, and its descriptor landed in the fallback cache.
	assert.Equal(t, 1, cars.log.count("PATCH /api/v1/cars/"+testCarUID+"/availability"))
	info, ok := cc.Get(context.Background(), testCarUID)
	require.True(t, ok)
	assert.Equal(t, "Mercedes Benz", info.Brand)

	// No compensation ran.
	assert.Equal(t, 0, payment.log.count("DELETE /api/v1/payment/"+testPaymentUID))
}

func TestBooking_SameDayRentalIsFree(t *testing.T) {
	t.Parallel()
	cars := newCarsBackend(t, availableCar())
	payment := newPaymentBackend(t)
	rental := newRentalBackend(t)

	svc := usecase.NewBookingService(cars.client(t), payment.client(t), rental.client(t), cache.NewMemory())
	req := bookingRequest()
	req.DateTo = req.DateFrom
	resp, err := svc.CreateRental(context.Background(), "alice", req)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Payment.Price)
}

func TestBooking_CarNotFoundStopsSaga(t *testing.T) {
	t.Parallel()
	cars := newCarsBackend(t, availableCar())
	cars.getCode = http.StatusNotFound
	payment := newPaymentBackend(t)
	rental := newRentalBackend(t)

	svc := usecase.NewBookingService(cars.client(t), payment.client(t), rental.client(t), cache.NewMemory())
	_, err := svc.CreateRental(context.Background(), "alice", bookingRequest())
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Nothing downstream of the lookup ran.
	assert.Equal(t, 0, payment.log.total())
	assert.Equal(t, 0, rental.log.total())
}

func TestBooking_PaymentOutagePropagatesUnavailable(t *testing.T) {
	t.Parallel()
	cars := newCarsBackend(t, availableCar())
	rental := newRentalBackend(t)
	paymentClient := upstream.NewPaymentClient(deadURL(t), upstream.NewHTTPClient(time.Second))

	svc := usecase.NewBookingService(cars.client(t), paymentClient, rental.client(t), cache.NewMemory())
	_, err := svc.CreateRental(context.Background(), "alice", bookingRequest())
	require.ErrorIs(t, err, domain.ErrUnavailable)

	// The saga stopped before reserving the car or creating the rental.
	assert.Equal(t, 0, cars.log.count("PATCH /api/v1/cars/"+testCarUID+"/availability"))
	assert.Equal(t, 0, rental.log.total())
}

func TestBooking_ReserveFailureVoidsPayment(t *testing.T) {
	t.Parallel()
	cars := newCarsBackend(t, availableCar())
	cars.patchCode = http.StatusInternalServerError
	payment := newPaymentBackend(t)
	rental := newRentalBackend(t)

	svc := usecase.NewBookingService(cars.client(t), payment.client(t), rental.client(t), cache.NewMemory())
	_, err := svc.CreateRental(context.Background(), "alice", bookingRequest())
	require.ErrorIs(t, err, domain.ErrInternal)

	// Payment was created and then voided exactly once; no rental got created.
	assert.Equal(t, 1, payment.log.count("POST /api/v1/payment"))
	assert.Equal(t, 1, payment.log.count("DELETE /api/v1/payment/"+testPaymentUID))
	assert.Equal(t, 0, rental.log.total())
}

func TestBooking_RentalFailureReleasesCarAndVoidsPayment(t *testing.T) {
	t.Parallel()
	cars := newCarsBackend(t, availableCar())
	payment := newPaymentBackend(t)
	rental := newRentalBackend(t)
	rental.createCode = http.StatusInternalServerError

	svc := usecase.NewBookingService(cars.client(t), payment.client(t), rental.client(t), cache.NewMemory())
	_, err := svc.CreateRental(context.Background(), "alice", bookingRequest())
	require.ErrorIs(t, err, domain.ErrInternal)

	// Reserve then release: two PATCHes against the same car.
	assert.Equal(t, 2, cars.log.count("PATCH /api/v1/cars/"+testCarUID+"/availability"))
	assert.Equal(t, 1, payment.log.count("DELETE /api/v1/payment/"+testPaymentUID))
}
