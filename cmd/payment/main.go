// Command payment starts the payment service.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/car-rental-gateway/internal/app"
	"github.com/fairyhunter13/car-rental-gateway/internal/config"
	"github.com/fairyhunter13/car-rental-gateway/internal/observability"
	"github.com/fairyhunter13/car-rental-gateway/internal/service/payment"
)

const defaultPort = 8050

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsurePaymentSchema(ctx, pool); err != nil {
		slog.Error("schema bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	srv := payment.NewServer(postgres.NewPaymentRepo(pool))
	app.Serve(cfg, cfg.ListenPort(defaultPort), srv.Routes())
}
