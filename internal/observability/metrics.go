package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per upstream (0=closed, 1=open, 2=half-open)",
		},
		[]string{"breaker"},
	)
	BreakerTripsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Total number of closed-to-open breaker transitions",
		},
		[]string{"breaker"},
	)
	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallbacks_total",
			Help: "Total number of fallback responses served",
		},
		[]string{"breaker"},
	)

	RetryQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "retry_queue_depth",
			Help: "Number of compensation tasks pending in the retry queue",
		},
	)
	RetryTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_tasks_total",
			Help: "Retry task outcomes",
		},
		[]string{"outcome"},
	)

	SagaOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_saga_total",
			Help: "Rental creation saga outcomes by terminal step",
		},
		[]string{"outcome"},
	)
)

var initOnce sync.Once

// InitMetrics registers all Prometheus metrics once per process.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			BreakerState,
			BreakerTripsTotal,
			FallbacksTotal,
			RetryQueueDepth,
			RetryTasksTotal,
			SagaOutcomesTotal,
		)
	})
}

// HTTPMetricsMiddleware records request counts and latencies keyed by the
// chi route pattern so labels stay low-cardinality.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
