package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgw/internal/config"
	"github.com/kailas-cloud/searchgw/internal/engine"
	"github.com/kailas-cloud/searchgw/internal/engine/meili"
	engineRedis "github.com/kailas-cloud/searchgw/internal/engine/redis"
	"github.com/kailas-cloud/searchgw/internal/metrics"
)

// openEngine creates the configured driver and wraps it with instrumentation.
// It does not contact the engine.
func openEngine(cfg config.EngineConfig, logger *zap.Logger) (engine.Engine, error) {
	var (
		inner engine.Engine
		err   error
	)
	switch cfg.Driver {
	case config.DriverMeilisearch:
		inner, err = meili.NewEngine(&meili.Config{
			Host:    cfg.Host,
			APIKey:  cfg.APIKey,
			Index:   cfg.Index,
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		})
	case config.DriverRedis:
		inner, err = engineRedis.NewEngine(engineRedis.Config{
			Addrs:      cfg.Addrs,
			Username:   cfg.Username,
			Password:   cfg.Password,
			DB:         cfg.DB,
			Index:      cfg.Index,
			TextFields: cfg.TextFields,
			TagField:   cfg.TagField,
		})
	default:
		return nil, fmt.Errorf("unknown engine driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s engine: %w", cfg.Driver, err)
	}

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()
	return engine.NewInstrumented(inner, cfg.Driver, logger), nil
}

// awaitEngine waits up to the configured readiness timeout for e to answer pings.
func awaitEngine(ctx context.Context, e engine.Pinger, cfg config.EngineConfig, logger *zap.Logger) error {
	if err := engine.WaitForReady(ctx, e, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		return err
	}
	logger.Info("Connected to search engine",
		zap.String("driver", cfg.Driver),
		zap.String("index", cfg.Index),
	)
	return nil
}
