package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/cache"
	"github.com/fairyhunter13/car-rental-gateway/internal/config"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/resilience"
)

// paymentUnavailableMsg is the uniform outage message the create path
// returns for any upstream transport failure. Kept verbatim for contract
// compatibility even when the failing upstream is not the payment service.
const paymentUnavailableMsg = "Payment Service unavailable"

// Service ports consumed by the handlers.

// Catalog lists cars.
type Catalog interface {
	ListCars(ctx context.Context, page, size int, showAll bool) (domain.CarsPage, error)
}

// Booking runs the rental-creation saga.
type Booking interface {
	CreateRental(ctx context.Context, username string, req domain.CreateRentalRequest) (domain.CreateRentalResponse, error)
}

// Query serves the aggregated read side.
type Query interface {
	ListRentals(ctx context.Context, username string) ([]domain.RentalResponse, error)
	GetRental(ctx context.Context, username, rentalUID string) (domain.RentalResponse, error)
}

// Lifecycle cancels and finishes rentals.
type Lifecycle interface {
	CancelRental(ctx context.Context, username, rentalUID string) error
	FinishRental(ctx context.Context, username, rentalUID string) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg       config.Config
	Catalog   Catalog
	Booking   Booking
	Query     Query
	Lifecycle Lifecycle
	Breakers  *resilience.Registry
	Queue     *resilience.RetryQueue
	Cache     cache.CarCache
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, catalog Catalog, booking Booking, query Query, lifecycle Lifecycle, reg *resilience.Registry, queue *resilience.RetryQueue, cc cache.CarCache) *Server {
	return &Server{Cfg: cfg, Catalog: catalog, Booking: booking, Query: query, Lifecycle: lifecycle, Breakers: reg, Queue: queue, Cache: cc}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// username extracts the trusted X-User-Name header, failing the request
// when absent.
func username(w http.ResponseWriter, r *http.Request) (string, bool) {
	u := r.Header.Get("X-User-Name")
	if u == "" {
		writeMessage(w, http.StatusBadRequest, "X-User-Name header required")
		return "", false
	}
	return u, true
}

// ListCarsHandler handles GET /api/v1/cars.
func (s *Server) ListCarsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		size := 10
		if v := r.URL.Query().Get("page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 {
				page = n
			}
		}
		if v := r.URL.Query().Get("size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 100 {
				size = n
			}
		}
		showAll := r.URL.Query().Get("showAll") == "true"
		pageResp, err := s.Catalog.ListCars(r.Context(), page, size, showAll)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageResp)
	}
}

// CreateRentalHandler handles POST /api/v1/rental — the booking saga.
func (s *Server) CreateRentalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := username(w, r)
		if !ok {
			return
		}
		var req domain.CreateRentalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		resp, err := s.Booking.CreateRental(r.Context(), user, req)
		if err != nil {
			if errors.Is(err, domain.ErrUnavailable) {
				writeMessage(w, http.StatusServiceUnavailable, paymentUnavailableMsg)
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ListRentalsHandler handles GET /api/v1/rental.
func (s *Server) ListRentalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := username(w, r)
		if !ok {
			return
		}
		rentals, err := s.Query.ListRentals(r.Context(), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rentals)
	}
}

// GetRentalHandler handles GET /api/v1/rental/{rentalUid}.
func (s *Server) GetRentalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := username(w, r)
		if !ok {
			return
		}
		rental, err := s.Query.GetRental(r.Context(), user, chi.URLParam(r, "rentalUid"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rental)
	}
}

// CancelRentalHandler handles DELETE /api/v1/rental/{rentalUid}.
func (s *Server) CancelRentalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := username(w, r)
		if !ok {
			return
		}
		if err := s.Lifecycle.CancelRental(r.Context(), user, chi.URLParam(r, "rentalUid")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// FinishRentalHandler handles POST /api/v1/rental/{rentalUid}/finish.
func (s *Server) FinishRentalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := username(w, r)
		if !ok {
			return
		}
		if err := s.Lifecycle.FinishRental(r.Context(), user, chi.URLParam(r, "rentalUid")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler handles GET /manage/health.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// CacheHandler handles GET /manage/cache: the fallback cache contents.
func (s *Server) CacheHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"carCache": s.Cache.Entries(r.Context()),
		})
	}
}

// BreakersHandler handles GET /manage/breakers: per-upstream breaker states.
func (s *Server) BreakersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.Breakers.Snapshot())
	}
}

// RetryQueueHandler handles GET /manage/retry: pending compensation tasks.
func (s *Server) RetryQueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"queueSize": s.Queue.Size(),
			"tasks":     s.Queue.Snapshot(),
		})
	}
}
