package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"newsdash/internal/aggregator"
	"newsdash/internal/cache"
	"newsdash/internal/config"
	"newsdash/internal/enrich"
	"newsdash/internal/fetcher"
	"newsdash/internal/logger"
	"newsdash/internal/server"
	"newsdash/internal/sources"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Debug)

	registry := sources.NewRegistry()
	if cfg.SourcesConfigPath != "" {
		if err := registry.LoadFile(cfg.SourcesConfigPath); err != nil {
			slog.Error("failed to load sources config", "path", cfg.SourcesConfigPath, "err", err)
			os.Exit(1)
		}
		slog.Info("sources config loaded", "path", cfg.SourcesConfigPath)
	}

	feedCache := cache.New(cfg.CacheTTL)
	client := fetcher.New(registry, feedCache, cfg.FetchTimeout)
	agg := aggregator.New(client, registry, aggregator.Config{
		PerSourceCap: cfg.PerSourceCap,
		TopLimit:     cfg.TopLimit,
		Workers:      cfg.FetchWorkers,
	})
	enricher := enrich.New(cfg.EnrichTimeout, cfg.EnrichConcurrency, cfg.EnrichTTL)

	srv := server.New(client, agg, registry, enricher)
	router := srv.Router(cfg.Debug)

	slog.Info("starting server", "port", cfg.Port, "sources", registry.Names())
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
