package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/glucoscreen/internal/analysis"
	"github.com/ZanzyTHEbar/glucoscreen/internal/monitoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Train the model and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg := appConfig
	if err := cfg.CheckServeSecret(); err != nil {
		return err
	}

	logger := monitoring.NewLogger()
	logger.SetLevel(monitoring.ParseLevel(cfg.Logging.Level))
	appLogger = logger
	slog.SetDefault(logger.Logger)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, analysis.FileDataset(cfg.Data.DatasetPath))
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		return err
	}
	defer a.Close()

	go a.privacy.RunCleanup(ctx, cfg.Privacy.CleanupInterval)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.router(),
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// /health answers 503 while training runs
	initErr := make(chan error, 1)
	go func() {
		initErr <- initializePipeline(ctx, a.pipeline)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		logger.Error("Server failed to start", "error", err)
		runErr = err
	case err := <-initErr:
		if err != nil {
			logger.Error("Assessment pipeline failed to initialize, shutting down",
				"state", a.pipeline.State().String(), "error", err)
			runErr = err
		} else {
			select {
			case <-ctx.Done():
				logger.Info("Shutdown signal received")
			case err := <-serveErr:
				logger.Error("Server failed", "error", err)
				runErr = err
			}
		}
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	logger.Info("Server exited")
	return runErr
}
