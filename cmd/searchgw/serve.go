package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgw/internal/config"
	"github.com/kailas-cloud/searchgw/internal/engine"
	chiTransport "github.com/kailas-cloud/searchgw/internal/transport/chi"
	catalogsvc "github.com/kailas-cloud/searchgw/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/searchgw/internal/usecase/health"
	"github.com/kailas-cloud/searchgw/internal/version"
)

// healthCheckTimeout bounds the engine ping behind GET /health.
const healthCheckTimeout = 2 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	logger.Info("Starting searchgw HTTP gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_driver", cfg.Engine.Driver),
		zap.String("engine_index", cfg.Engine.Index),
		zap.Bool("access_gate", cfg.Auth.Enabled()),
		zap.Strings("allowed_origins", cfg.Auth.AllowedOrigins),
	)

	e, err := openEngine(cfg.Engine, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	// An engine that is down at startup degrades answers, it does not block serving.
	if err := awaitEngine(ctx, e, cfg.Engine, logger); err != nil {
		logger.Warn("Search engine not ready, serving degraded responses",
			zap.String("driver", cfg.Engine.Driver),
			zap.Error(err),
		)
	}

	handler := newHandler(cfg, e, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newHandler wires the use cases over e and returns the gateway router.
func newHandler(c config.Config, e engine.Engine, logger *zap.Logger) http.Handler {
	catalog := catalogsvc.New(e)
	health := healthuc.New(e, healthCheckTimeout)

	server := chiTransport.NewServer(catalog, health, c.Setup.DocumentsPath)
	return chiTransport.NewRouter(server, chiTransport.RouterConfig{
		AllowedOrigins: c.Auth.AllowedOrigins,
		SharedSecret:   c.Auth.SharedSecret,
		Logger:         logger,
	})
}
