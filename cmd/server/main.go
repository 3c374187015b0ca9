package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/adapters/handler"
	"github.com/wadjakorntonsri/cv-analytics/pkg/adapters/repository/sqlrepo"
	"github.com/wadjakorntonsri/cv-analytics/pkg/config"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to connect to database")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, repo),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if err := repo.Close(); err != nil {
		logging.Error().Err(err).Msg("Failed to close database")
	}
	logging.Info().Msg("Server stopped")
}

// openRepository connects and prepares the schema. A schema failure is
// logged and the server keeps going: the objects usually exist already.
func openRepository(ctx context.Context, cfg *config.Config) (*sqlrepo.SQLRepository, error) {
	repo, err := sqlrepo.NewSQLRepository(ctx, sqlrepo.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DSN(),
		MinConns: config.PoolMinConns,
		MaxConns: config.PoolMaxConns,
	})
	if err != nil {
		return nil, err
	}
	if err := repo.InitSchema(ctx); err != nil {
		logging.Warn().Err(err).Msg("Schema initialization incomplete, continuing")
	}
	return repo, nil
}

func newRouter(cfg *config.Config, repo *sqlrepo.SQLRepository) http.Handler {
	tracking := services.NewTrackingService(repo)
	analytics := services.NewAnalyticsService(repo, cfg.AnalyticsSnapshot)
	return handler.NewRouter(cfg, tracking, analytics)
}
