package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// CarsClient talks to the cars inventory service.
type CarsClient struct {
	base string
	hc   *http.Client
}

// NewCarsClient constructs a client for the given base URL.
func NewCarsClient(base string, hc *http.Client) *CarsClient {
	return &CarsClient{base: base, hc: hc}
}

// List fetches a page of cars. showAll includes unavailable cars.
func (c *CarsClient) List(ctx context.Context, page, size int, showAll bool) (domain.CarsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("show_all", strconv.FormatBool(showAll))
	var out domain.CarsPage
	err := doJSON(ctx, c.hc, "cars service", http.MethodGet, c.base+"/api/v1/cars?"+q.Encode(), nil, &out)
	return out, err
}

// Get fetches one car by uid.
func (c *CarsClient) Get(ctx context.Context, carUID string) (domain.Car, error) {
	var out domain.Car
	err := doJSON(ctx, c.hc, "cars service", http.MethodGet, c.base+"/api/v1/cars/"+url.PathEscape(carUID), nil, &out)
	return out, err
}

// SetAvailability reserves (false) or releases (true) a car.
func (c *CarsClient) SetAvailability(ctx context.Context, carUID string, available bool) error {
	u := fmt.Sprintf("%s/api/v1/cars/%s/availability?available=%t", c.base, url.PathEscape(carUID), available)
	return doJSON(ctx, c.hc, "cars service", http.MethodPatch, u, nil, nil)
}
