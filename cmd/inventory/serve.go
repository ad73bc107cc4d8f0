package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockroom/inventory-system/internal/api"
	"github.com/stockroom/inventory-system/internal/api/handler"
	"github.com/stockroom/inventory-system/internal/core/service"
	mongodb "github.com/stockroom/inventory-system/internal/infrastructure/db/mongo"
	"github.com/stockroom/inventory-system/internal/infrastructure/queue"
	"github.com/stockroom/inventory-system/internal/infrastructure/realtime"
	"github.com/stockroom/inventory-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Usage:

	inventory serve
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	hub := realtime.NewHub(logger.Component("realtime"))
	defer hub.Close()

	activityService := service.NewActivityService(mongodb.NewActivityRepository(a.db), hub, logger.Component("activity"))
	dispatcher := queue.NewDispatcher(a.cfg.ActivityWorkers, activityService, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	e, err := api.NewRouter(api.Dependencies{
		Auth:          a.authService(dispatcher),
		Activity:      activityService,
		Hub:           hub,
		Readiness:     handler.NewHealthDependenciesHandler(a.db, a.redis),
		Log:           logger.Component("http"),
		CORSOrigins:   a.cfg.CORSOrigins,
		AuthRateLimit: a.cfg.AuthRateLimit,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Bool("production", a.cfg.IsProduction()).Msg("http server listening")
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	shutdownErr := e.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		a.log.Error().Err(shutdownErr).Msg("graceful shutdown failed")
	}
	// Handlers are done publishing; flush queued activity before the stores close.
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("activity queue not fully drained")
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	a.log.Info().Msg("server stopped")
	return nil
}
