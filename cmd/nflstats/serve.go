package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/delivery/http/handler"
	"github.com/nflstats/predictor/internal/delivery/http/router"
	"github.com/nflstats/predictor/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored predictions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("port", "", "HTTP listen port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	repo, err := a.predictions(ctx)
	if err != nil {
		return fmt.Errorf("failed to open prediction store: %w", err)
	}
	defer repo.Close()

	rdb := a.redis(ctx)
	defer closeRedis(rdb)

	stats := usecase.NewStatisticsUseCase(repo, statisticsCache(rdb, a.cfg), a.cfg.ResponseCacheTTL(), a.logger)
	server := &http.Server{
		Addr:         ":" + a.cfg.ServerPort,
		Handler:      router.New(handler.NewHandler(stats, a.logger), a.cfg.CORSOrigins, a.logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("port", a.cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("could not listen on port %s: %w", a.cfg.ServerPort, err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.logger.Info("server exited")
	return nil
}
