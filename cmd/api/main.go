package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"fellingdate/adapters/api"
	"fellingdate/adapters/catalog"
	"fellingdate/adapters/postgres"
	"fellingdate/app"
	"fellingdate/internal"
	"fellingdate/internal/config"
	"fellingdate/ports"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration: %v", err)
		os.Exit(1)
	}

	registry := catalog.New()
	if cfg.Estimate.DefaultDataset != "" {
		if err := registry.SetDefault(cfg.Estimate.DefaultDataset); err != nil {
			logger.Error("configuring default dataset: %v", err)
			os.Exit(1)
		}
	}

	opts := app.EstimatorOptions{
		OnUnknownDataset: cfg.Estimate.OnUnknownDataset,
		Truncation:       cfg.Estimate.Truncation,
	}
	estimator := app.NewIntervalEstimator(registry, opts)
	combiner := app.NewSeriesCombiner(registry, opts)
	spd := app.NewSPDAggregator(registry, opts)

	var archive ports.EstimateArchive
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("connecting to estimate archive: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			logger.Error("migrating estimate archive: %v", err)
			os.Exit(1)
		}
		archive = postgres.NewEstimateArchive(db)
		logger.Info("estimate archive enabled")
	}

	server := api.NewServer(estimator, combiner, spd, registry, archive, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s (default dataset %s)", addr, registry.Default().Name)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
