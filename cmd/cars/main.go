// Command cars starts the cars inventory service.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fairyhunter13/car-rental-gateway/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/car-rental-gateway/internal/app"
	"github.com/fairyhunter13/car-rental-gateway/internal/config"
	"github.com/fairyhunter13/car-rental-gateway/internal/observability"
	"github.com/fairyhunter13/car-rental-gateway/internal/service/cars"
)

const defaultPort = 8070

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

	if err := postgres.EnsureCarsSchema(ctx, pool); err != nil {
		slog.Error("schema bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	repo := postgres.NewCarRepo(pool)
	if err := repo.Seed(ctx); err != nil {
		slog.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}

	srv := cars.NewServer(repo)
	app.Serve(cfg, cfg.ListenPort(defaultPort), srv.Routes())
}
