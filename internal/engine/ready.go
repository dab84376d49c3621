package engine

import (
	"context"
	"fmt"
	"time"
)

// readyPollInterval is how often WaitForReady pings the engine.
const readyPollInterval = 100 * time.Millisecond

// WaitForReady polls Ping until the engine responds or timeout expires.
// A zero timeout checks once.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	if timeout <= 0 {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("engine not ready: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = p.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for engine: %w", lastErr)
		case <-ticker.C:
		}
	}
}
