package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/econ-etl/internal/config"
	"github.com/rickgao/econ-etl/internal/fetch"
	"github.com/rickgao/econ-etl/internal/pipeline"
	"github.com/rickgao/econ-etl/internal/rawstore"
	"github.com/rickgao/econ-etl/internal/revision"
	"github.com/rickgao/econ-etl/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/econetl.yaml", "path to config file")
	resetKey := flag.String("reset", "", "delete fetch state for the given series key and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting econetl", "config", *configPath)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded", "series", len(cfg.Series))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool, logger)
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	tracker := revision.NewTracker(pool, logger)

	// Explicit state reset: the next run refetches the series' full
	// history. Nothing else deletes state.
	if *resetKey != "" {
		if err := tracker.Reset(ctx, *resetKey); err != nil {
			logger.Error("failed to reset series state", "series", *resetKey, "error", err)
			os.Exit(1)
		}
		return
	}

	snapshots, err := rawstore.New(cfg.Storage.RawDir, logger)
	if err != nil {
		logger.Error("failed to open raw snapshot store", "error", err)
		os.Exit(1)
	}

	fred := fetch.NewFRED(
		cfg.Providers.FRED.BaseURL,
		cfg.Providers.FRED.APIKey,
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.Providers.FRED.Timeout),
		fetch.WithRetries(cfg.Providers.FRED.MaxRetries, time.Second),
		fetch.WithRateLimit(cfg.Providers.FRED.RateLimit, cfg.Providers.FRED.RateBurst),
	)
	bls := fetch.NewBLS(
		cfg.Providers.BLS.BaseURL,
		cfg.Providers.BLS.APIKey,
		cfg.Providers.BLS.StartYear,
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.Providers.BLS.Timeout),
		fetch.WithRetries(cfg.Providers.BLS.MaxRetries, time.Second),
		fetch.WithRateLimit(cfg.Providers.BLS.RateLimit, cfg.Providers.BLS.RateBurst),
	)

	runner := pipeline.New(
		pipeline.Config{Descriptors: cfg.Descriptors()},
		[]pipeline.Provider{fred, bls},
		tracker,
		snapshots,
		st,
		logger,
	)

	report := runner.Run(ctx)
	report.LogSummary(logger)

	if !report.OK() {
		os.Exit(1)
	}
}
