package usecase_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/usecase"
)

const (
	testCarUID     = "109b42f3-198d-4c89-9276-a7520a7120ab"
	testPaymentUID = "b8f7e915-0f0c-4b84-9cf0-86b7dff47b76"
	testRentalUID  = "f87cd26b-6a2f-4cf5-8a6b-3d2f0a51b282"
)

func testSettings() usecase.BreakerSettings {
	return usecase.BreakerSettings{FailureThreshold: 5, OpenTimeout: time.Minute}
}

// callLog records "METHOD /path" pairs across goroutines.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r.Method+" "+r.URL.Path)
}

func (l *callLog) count(call string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (l *callLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// carsBackend fakes the cars service. A zero status field means success.
type carsBackend struct {
	log       callLog
	car       domain.Car
	getCode   int
	patchCode int
	srv       *httptest.Server
}

func newCarsBackend(t *testing.T, car domain.Car) *carsBackend {
	t.Helper()
	b := &carsBackend{car: car}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.log.add(r)
		switch {
		case r.Method == http.MethodPatch:
			if b.patchCode != 0 {
				w.WriteHeader(b.patchCode)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path != "/api/v1/cars":
			if b.getCode != 0 {
				w.WriteHeader(b.getCode)
				_, _ = w.Write([]byte(`{"message":"car not found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(b.car)
		default:
			_ = json.NewEncoder(w).Encode(domain.CarsPage{
				Page: 1, PageSize: 10, TotalElements: 1, Items: []domain.Car{b.car},
			})
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *carsBackend) client(t *testing.T) *upstream.CarsClient {
	t.Helper()
	return upstream.NewCarsClient(b.srv.URL, upstream.NewHTTPClient(time.Second))
}

// paymentBackend fakes the payment service.
type paymentBackend struct {
	log        callLog
	payment    domain.Payment
	createCode int
	deleteCode int
	srv        *httptest.Server
}

func newPaymentBackend(t *testing.T) *paymentBackend {
	t.Helper()
	b := &paymentBackend{payment: domain.Payment{PaymentUID: testPaymentUID, Status: domain.PaymentPaid, Price: 7000}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.log.add(r)
		switch r.Method {
		case http.MethodPost:
			if b.createCode != 0 {
				w.WriteHeader(b.createCode)
				return
			}
			var body map[string]int
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(domain.Payment{
				PaymentUID: testPaymentUID, Status: domain.PaymentPaid, Price: body["price"],
			})
		case http.MethodDelete:
			if b.deleteCode != 0 {
				w.WriteHeader(b.deleteCode)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			_ = json.NewEncoder(w).Encode(b.payment)
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *paymentBackend) client(t *testing.T) *upstream.PaymentClient {
	t.Helper()
	return upstream.NewPaymentClient(b.srv.URL, upstream.NewHTTPClient(time.Second))
}

// rentalBackend fakes the rental service.
type rentalBackend struct {
	log        callLog
	record     domain.RentalRecord
	list       []domain.RentalRecord
	createCode int
	getCode    int
	deleteCode int
	finishCode int
	srv        *httptest.Server
}

func newRentalBackend(t *testing.T) *rentalBackend {
	t.Helper()
	b := &rentalBackend{record: domain.RentalRecord{
		RentalUID:  testRentalUID,
		Username:   "alice",
		PaymentUID: testPaymentUID,
		CarUID:     testCarUID,
		DateFrom:   "2026-09-01",
		DateTo:     "2026-09-03",
		Status:     domain.RentalInProgress,
	}}
	b.list = []domain.RentalRecord{b.record}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.log.add(r)
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/finish"):
			if b.finishCode != 0 {
				w.WriteHeader(b.finishCode)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost:
			if b.createCode != 0 {
				w.WriteHeader(b.createCode)
				return
			}
			var req domain.RentalCreate
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(domain.RentalRecord{
				RentalUID:  testRentalUID,
				Username:   req.Username,
				PaymentUID: req.PaymentUID,
				CarUID:     req.CarUID,
				DateFrom:   req.DateFrom,
				DateTo:     req.DateTo,
				Status:     domain.RentalInProgress,
			})
		case r.Method == http.MethodDelete:
			if b.deleteCode != 0 {
				w.WriteHeader(b.deleteCode)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/v1/rental":
			_ = json.NewEncoder(w).Encode(b.list)
		default:
			if b.getCode != 0 {
				w.WriteHeader(b.getCode)
				_, _ = w.Write([]byte(`{"message":"rental not found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(b.record)
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *rentalBackend) client(t *testing.T) *upstream.RentalClient {
	t.Helper()
	return upstream.NewRentalClient(b.srv.URL, upstream.NewHTTPClient(time.Second))
}

func availableCar() domain.Car {
	return domain.Car{
		CarUID:             testCarUID,
		Brand:              "Mercedes Benz",
		Model:              "GLA 250",
		RegistrationNumber: "ЛО777Х799",
		Price:              3500,
		Type:               "SEDAN",
		Available:          true,
	}
}

// deadURL returns a base URL nothing listens on, for transport failures.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	return srv.URL
}
