// Package upstream contains typed HTTP clients for the cars, payment, and
// rental services. All outbound calls go through one shared http.Client so
// timeouts and tracing are uniform.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// NewHTTPClient builds the shared outbound client with a per-request timeout
// and OTEL-instrumented transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// StatusError reports a well-formed non-2xx response from an upstream. The
// caller decides whether it is a breaker-relevant failure.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.Code)
}

// StatusCode extracts the HTTP status from a StatusError chain, reporting
// whether err was an application-level upstream error at all.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// doJSON performs one request/response against an upstream. Transport-level
// failures (timeout, refused connection, DNS) wrap domain.ErrUnavailable;
// non-2xx responses become *StatusError; 2xx bodies are decoded into out
// when out is non-nil.
func doJSON(ctx context.Context, hc *http.Client, service, method, url string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("op=upstream.marshal service=%s: %w", service, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return fmt.Errorf("op=upstream.request service=%s: %w", service, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("op=upstream.do service=%s: %w: %v", service, domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Service: service, Code: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("op=upstream.decode service=%s: %w", service, err)
		}
	}
	return nil
}
