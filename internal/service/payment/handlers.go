// Package payment implements the payment service HTTP surface.
package payment

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
	Create(ctx domain.Context, price int) (domain.Payment, error)
	Get(ctx domain.Context, paymentUID string) (domain.Payment, error)
	Cancel(ctx domain.Context, paymentUID string) error
}

// Server holds the handlers' dependencies.
type Server struct{ Repo Repo }

// NewServer constructs a payment service server.
func NewServer(repo Repo) *Server { return &Server{Repo: repo} }

// Routes returns the service's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/manage/health", healthHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/api/v1/payment", s.createHandler)
	r.Get("/api/v1/payment/{paymentUid}", s.getHandler)
	r.Delete("/api/v1/payment/{paymentUid}", s.cancelHandler)
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRequest struct {
	Price int `json:"price"`
}

func (s *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Price < 0 {
		writeMessage(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	p, err := s.Repo.Create(r.Context(), req.Price)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to create payment")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.Repo.Get(r.Context(), chi.URLParam(r, "paymentUid"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Payment not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to load payment")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) cancelHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Repo.Cancel(r.Context(), chi.URLParam(r, "paymentUid")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Payment not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to cancel payment")
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
