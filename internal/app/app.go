package app

import (
	"github.com/gin-gonic/gin"

	"github.com/mrankitsharma08/FQL/config"
	"github.com/mrankitsharma08/FQL/internal/api"
	"github.com/mrankitsharma08/FQL/internal/logger"
	"github.com/mrankitsharma08/FQL/internal/moses"
	"github.com/mrankitsharma08/FQL/internal/service"
	"github.com/mrankitsharma08/FQL/internal/storage"
)

// InitializeApp sets up all application dependencies and returns a
// fully configured Gin router plus a cleanup function for graceful
// shutdown.
//
// Responsibilities:
//   - Builds the analytics client and the report service.
//   - Connects to Postgres for the stored target dataset. The store
//     is optional for serving: when it is unreachable, the API still
//     runs with inline targets only and /readyz reports degraded.
//   - Configures the Gin router with routes and probes.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	fetcher := moses.NewClient(cfg.Moses.URL, cfg.Moses.Timeout)
	svc := service.NewReportService(fetcher, cfg.Moses.Parallel)

	var repo storage.TargetsRepository
	var dbPing func() error
	cleanup := func() {}

	db, err := postgresOpener(cfg)
	if err != nil {
		logger.L().Warn().Err(err).Msg("target store unavailable, serving with inline targets only")
	} else {
		repo = storage.NewTargetsRepository(db)
		dbPing = db.Ping
		cleanup = func() { _ = db.Close() }
	}

	handler := api.NewHandler(svc, repo)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(dbPing)
	healthHandler.Register(router)

	return router, cleanup, nil
}
