package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// RentalClient talks to the rental record service. Every per-rental
// operation is scoped by username; the rental service treats the pair
// (rentalUid, username) as the lookup key.
type RentalClient struct {
	base string
	hc   *http.Client
}

// NewRentalClient constructs a client for the given base URL.
func NewRentalClient(base string, hc *http.Client) *RentalClient {
	return &RentalClient{base: base, hc: hc}
}

// Create opens an IN_PROGRESS rental record.
func (c *RentalClient) Create(ctx context.Context, req domain.RentalCreate) (domain.RentalRecord, error) {
	var out domain.RentalRecord
	err := doJSON(ctx, c.hc, "rental service", http.MethodPost, c.base+"/api/v1/rental", req, &out)
	return out, err
}

// ListByUsername fetches all rentals belonging to a user.
func (c *RentalClient) ListByUsername(ctx context.Context, username string) ([]domain.RentalRecord, error) {
	q := url.Values{}
	q.Set("username", username)
	var out []domain.RentalRecord
	err := doJSON(ctx, c.hc, "rental service", http.MethodGet, c.base+"/api/v1/rental?"+q.Encode(), nil, &out)
	return out, err
}

// Get fetches one rental by uid for a user.
func (c *RentalClient) Get(ctx context.Context, rentalUID, username string) (domain.RentalRecord, error) {
	q := url.Values{}
	q.Set("username", username)
	var out domain.RentalRecord
	err := doJSON(ctx, c.hc, "rental service", http.MethodGet, c.base+"/api/v1/rental/"+url.PathEscape(rentalUID)+"?"+q.Encode(), nil, &out)
	return out, err
}

// Cancel marks a rental CANCELED.
func (c *RentalClient) Cancel(ctx context.Context, rentalUID, username string) error {
	q := url.Values{}
	q.Set("username", username)
	return doJSON(ctx, c.hc, "rental service", http.MethodDelete, c.base+"/api/v1/rental/"+url.PathEscape(rentalUID)+"?"+q.Encode(), nil, nil)
}

// Finish marks a rental FINISHED.
func (c *RentalClient) Finish(ctx context.Context, rentalUID, username string) error {
	q := url.Values{}
	q.Set("username", username)
	return doJSON(ctx, c.hc, "rental service", http.MethodPost, c.base+"/api/v1/rental/"+url.PathEscape(rentalUID)+"/finish?"+q.Encode(), nil, nil)
}
