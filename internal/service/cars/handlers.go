// Package cars implements the cars inventory service HTTP surface.
package cars

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// Repo is the persistence port the handlers consume.
type Repo interface {
	List(ctx domain.Context, page, size int, showAll bool) ([]domain.Car, int, error)
	Get(ctx domain.Context, carUID string) (domain.Car, error)
	SetAvailability(ctx domain.Context, carUID string, available bool) error
}

// Server holds the handlers' dependencies.
type Server struct{ Repo Repo }

// NewServer constructs a cars service server.
func NewServer(repo Repo) *Server { return &Server{Repo: repo} }

// Routes returns the service's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/manage/health", healthHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/v1/cars", s.listHandler)
	r.Get("/api/v1/cars/{carUid}", s.getHandler)
	r.Patch("/api/v1/cars/{carUid}/availability", s.availabilityHandler)
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
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
	showAll := r.URL.Query().Get("show_all") == "true"

	cars, total, err := s.Repo.List(r.Context(), page, size, showAll)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to list cars")
		return
	}
	writeJSON(w, http.StatusOK, domain.CarsPage{
		Page:          page,
		PageSize:      len(cars),
		TotalElements: total,
		Items:         cars,
	})
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	car, err := s.Repo.Get(r.Context(), chi.URLParam(r, "carUid"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Car not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to load car")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) availabilityHandler(w http.ResponseWriter, r *http.Request) {
	available, err := strconv.ParseBool(r.URL.Query().Get("available"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "available query parameter required")
		return
	}
	if err := s.Repo.SetAvailability(r.Context(), chi.URLParam(r, "carUid"), available); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Car not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to update availability")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
