// Command gateway starts the car-rental orchestration gateway. It composes
// the user-facing API from the cars, payment, and rental services, runs the
// booking saga with compensations, and keeps serving degraded responses
// when a backend is down.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/cache"
	httpserver "github.com/fairyhunter13/car-rental-gateway/internal/adapter/httpserver"
	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/upstream"
	"github.com/fairyhunter13/car-rental-gateway/internal/app"
	"github.com/fairyhunter13/car-rental-gateway/internal/config"
	"github.com/fairyhunter13/car-rental-gateway/internal/observability"
	"github.com/fairyhunter13/car-rental-gateway/internal/resilience"
	"github.com/fairyhunter13/car-rental-gateway/internal/usecase"
)

const defaultPort = 8080

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Upstream clients share one instrumented HTTP client.
	hc := upstream.NewHTTPClient(cfg.UpstreamTimeout)
	cars := upstream.NewCarsClient(cfg.CarsServiceURL, hc)
	payment := upstream.NewPaymentClient(cfg.PaymentServiceURL, hc)
	rental := upstream.NewRentalClient(cfg.RentalServiceURL, hc)

	// Car fallback cache: process-local unless REDIS_URL points at a
	// shared instance.
	var carCache cache.CarCache = cache.NewMemory()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			slog.Error("redis cache init failed", slog.Any("error", err))
			os.Exit(1)
		}
		if err := rc.Ping(ctx); err != nil {
			slog.Error("redis cache unreachable", slog.Any("error", err))
			os.Exit(1)
		}
		carCache = rc
		slog.Info("car cache backed by redis")
	}

	registry := resilience.NewRegistry()
	settings := usecase.BreakerSettings{
		FailureThreshold: cfg.BreakerThreshold,
		OpenTimeout:      cfg.BreakerTimeout,
	}

	catalogSvc := usecase.NewCatalogService(cars, registry, settings)
	bookingSvc := usecase.NewBookingService(cars, payment, rental, carCache)
	querySvc := usecase.NewQueryService(cars, payment, rental, carCache, registry, settings)
	lifecycleSvc := usecase.NewLifecycleService(cars, payment, rental)

	queue := resilience.NewRetryQueue(lifecycleSvc, cfg.RetryInterval, cfg.RetryMaxAttempts)
	lifecycleSvc.BindQueue(queue)
	queue.Start(ctx)
	defer queue.Stop()

	srv := httpserver.NewServer(cfg, catalogSvc, bookingSvc, querySvc, lifecycleSvc, registry, queue, carCache)
	handler := app.BuildRouter(cfg, srv)

	app.Serve(cfg, cfg.ListenPort(defaultPort), handler)
}
