package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/cv-analytics/pkg/adapters/handler"
	"github.com/wadjakorntonsri/cv-analytics/pkg/adapters/repository/sqlrepo"
	"github.com/wadjakorntonsri/cv-analytics/pkg/config"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Note: on Vercel a local sqlite file is ephemeral; use Postgres or a libsql:// URL
	ctx := context.Background()
	repo, err := sqlrepo.NewSQLRepository(ctx, sqlrepo.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DSN(),
		MinConns: config.PoolMinConns,
		MaxConns: config.PoolMaxConns,
	})
	if err != nil {
		panic(err)
	}
	if err := repo.InitSchema(ctx); err != nil {
		logging.Warn().Err(err).Msg("Schema initialization incomplete, continuing")
	}

	mux = handler.NewRouter(cfg,
		services.NewTrackingService(repo),
		services.NewAnalyticsService(repo, cfg.AnalyticsSnapshot))
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
