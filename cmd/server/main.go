// Package main is the entry point for the folio analytics server.
//
// It loads configuration, opens the history and cache databases, starts the
// background scheduler and serves the JSON API until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/di"
	"github.com/aristath/folio/internal/server"
	"github.com/aristath/folio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	if v := os.Getenv("VERSION"); v != "" {
		server.Version = v
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("solver", cfg.Solver).
		Msg("Starting folio")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:          log,
		Port:         cfg.Port,
		DevMode:      cfg.DevMode,
		Databases:    container.Databases(),
		Analytics:    container.AnalyticsService,
		Optimization: container.OptimizationService,
		Prices:       container.HistoryStore,
		Metrics:      container.Metrics,
		Scheduler:    container.Scheduler,
		Jobs:         jobs,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	container.Scheduler.Start()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	container.Scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
