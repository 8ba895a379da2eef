package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

func TestCarsClient_Get(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/cars/109b42f3-198d-4c89-9276-a7520a7120ab", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.Car{
			CarUID: "109b42f3-198d-4c89-9276-a7520a7120ab",
			Brand:  "Mercedes Benz",
			Model:  "GLA 250",
			Price:  3500,
		})
	}))
	defer srv.Close()

	c := upstream.NewCarsClient(srv.URL, upstream.NewHTTPClient(time.Second))
	car, err := c.Get(context.Background(), "109b42f3-198d-4c89-9276-a7520a7120ab")
	require.NoError(t, err)
	assert.Equal(t, "Mercedes Benz", car.Brand)
	assert.Equal(t, 3500, car.Price)
}

func TestCarsClient_ListSendsPagingParams(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("size"))
		assert.Equal(t, "true", q.Get("show_all"))
		_ = json.NewEncoder(w).Encode(domain.CarsPage{Page: 2, PageSize: 25, TotalElements: 1})
	}))
	defer srv.Close()

	c := upstream.NewCarsClient(srv.URL, upstream.NewHTTPClient(time.Second))
	page, err := c.List(context.Background(), 2, 25, true)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalElements)
}

func TestCarsClient_SetAvailability(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/cars/car-1/availability", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("available"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := upstream.NewCarsClient(srv.URL, upstream.NewHTTPClient(time.Second))
	require.NoError(t, c.SetAvailability(context.Background(), "car-1", false))
}

func TestPaymentClient_CreatePostsPrice(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 7000, body["price"])
		_ = json.NewEncoder(w).Encode(domain.Payment{PaymentUID: "pay-1", Status: domain.PaymentPaid, Price: 7000})
	}))
	defer srv.Close()

	c := upstream.NewPaymentClient(srv.URL, upstream.NewHTTPClient(time.Second))
	p, err := c.Create(context.Background(), 7000)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, p.Status)
}

func TestRentalClient_ScopesByUsername(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(domain.RentalRecord{RentalUID: "rent-1", Status: domain.RentalInProgress})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := upstream.NewRentalClient(srv.URL, upstream.NewHTTPClient(time.Second))
	rec, err := c.Get(context.Background(), "rent-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalInProgress, rec.Status)

	require.NoError(t, c.Cancel(context.Background(), "rent-1", "alice"))
}

func TestDoJSON_NonSuccessBecomesStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"car not found"}`))
	}))
	defer srv.Close()

	c := upstream.NewCarsClient(srv.URL, upstream.NewHTTPClient(time.Second))
	_, err := c.Get(context.Background(), "missing")
	require.Error(t, err)

	code, ok := upstream.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotErrorIs(t, err, domain.ErrUnavailable)
}

func TestDoJSON_TransportFailureIsUnavailable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := upstream.NewPaymentClient(srv.URL, upstream.NewHTTPClient(time.Second))
	_, err := c.Create(context.Background(), 100)
	require.ErrorIs(t, err, domain.ErrUnavailable)

	_, ok := upstream.StatusCode(err)
	assert.False(t, ok)
}

func TestDoJSON_TimeoutIsUnavailable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := upstream.NewCarsClient(srv.URL, upstream.NewHTTPClient(50*time.Millisecond))
	_, err := c.Get(context.Background(), "slow")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}
