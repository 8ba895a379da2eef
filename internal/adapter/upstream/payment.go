package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// PaymentClient talks to the payment service.
type PaymentClient struct {
	base string
	hc   *http.Client
}

// NewPaymentClient constructs a client for the given base URL.
func NewPaymentClient(base string, hc *http.Client) *PaymentClient {
	return &PaymentClient{base: base, hc: hc}
}

// Create opens a PAID payment for the given price.
func (c *PaymentClient) Create(ctx context.Context, price int) (domain.Payment, error) {
	var out domain.Payment
	body := map[string]int{"price": price}
	err := doJSON(ctx, c.hc, "payment service", http.MethodPost, c.base+"/api/v1/payment", body, &out)
	return out, err
}

// Get fetches one payment by uid.
func (c *PaymentClient) Get(ctx context.Context, paymentUID string) (domain.Payment, error) {
	var out domain.Payment
	err := doJSON(ctx, c.hc, "payment service", http.MethodGet, c.base+"/api/v1/payment/"+url.PathEscape(paymentUID), nil, &out)
	return out, err
}

// Cancel voids a payment.
func (c *PaymentClient) Cancel(ctx context.Context, paymentUID string) error {
	return doJSON(ctx, c.hc, "payment service", http.MethodDelete, c.base+"/api/v1/payment/"+url.PathEscape(paymentUID), nil, nil)
}
