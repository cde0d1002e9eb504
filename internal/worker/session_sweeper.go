package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired sessions.
type Sweeper interface {
	Sweep() int
}

// StartSessionSweeper runs Sweep every interval until ctx is done.
func StartSessionSweeper(ctx context.Context, sessions Sweeper, interval time.Duration, logger *zap.Logger) {
	if sessions == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Info("expired sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
}
