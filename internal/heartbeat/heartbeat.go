// Package heartbeat periodically logs that the process is alive.
package heartbeat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"zapisnik/internal/metrics"
)

const defaultInterval = 5 * time.Minute

// Run logs a liveness line every interval until the context is done.
// Intended to run in its own goroutine.
func Run(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultInterval
	}
	l := logger.With().Str("component", "heartbeat").Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("heartbeat stopped")
			return
		case <-ticker.C:
			metrics.IncHeartbeat()
			l.Info().Msg("alive")
		}
	}
}
