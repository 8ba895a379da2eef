// Package rental implements the rental record service HTTP surface.
package rental

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// Repo is the persistence port the handlers consume.
type Repo interface {
	Create(ctx domain.Context, req domain.RentalCreate) (domain.RentalRecord, error)
	ListByUsername(ctx domain.Context, username string) ([]domain.RentalRecord, error)
	Get(ctx domain.Context, rentalUID, username string) (domain.RentalRecord, error)
	SetStatus(ctx domain.Context, rentalUID, username, status string) error
}

// Server holds the handlers' dependencies.
type Server struct{ Repo Repo }

// NewServer constructs a rental service server.
func NewServer(repo Repo) *Server { return &Server{Repo: repo} }

// Routes returns the service's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/manage/health", healthHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/api/v1/rental", s.createHandler)
	r.Get("/api/v1/rental", s.listHandler)
	r.Get("/api/v1/rental/{rentalUid}", s.getHandler)
	r.Delete("/api/v1/rental/{rentalUid}", s.cancelHandler)
	r.Post("/api/v1/rental/{rentalUid}/finish", s.finishHandler)
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RentalCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.PaymentUID == "" || req.CarUID == "" {
		writeMessage(w, http.StatusBadRequest, "username, paymentUid and carUid are required")
		return
	}
	rec, err := s.Repo.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeMessage(w, http.StatusBadRequest, "dates must use YYYY-MM-DD")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to create rental")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("username")
	if user == "" {
		writeMessage(w, http.StatusBadRequest, "username query parameter required")
		return
	}
	recs, err := s.Repo.ListByUsername(r.Context(), user)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to list rentals")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("username")
	if user == "" {
		writeMessage(w, http.StatusBadRequest, "username query parameter required")
		return
	}
	rec, err := s.Repo.Get(r.Context(), chi.URLParam(r, "rentalUid"), user)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Rental not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to load rental")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) cancelHandler(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, domain.RentalCanceled)
}

func (s *Server) finishHandler(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, domain.RentalFinished)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	user := r.URL.Query().Get("username")
	if user == "" {
		writeMessage(w, http.StatusBadRequest, "username query parameter required")
		return
	}
	if err := s.Repo.SetStatus(r.Context(), chi.URLParam(r, "rentalUid"), user, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Rental not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to update rental")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
