package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

var sweepMu sync.Mutex

// RunSweepOnce runs one lateness sweep. Overlapping calls are skipped
// rather than queued.
func RunSweepOnce(ctx context.Context, lifecycle *OrderLifecycle, logger *zap.Logger) {
	if !sweepMu.TryLock() {
		logger.Debug("Lateness sweep already running, skipping")
		return
	}
	defer sweepMu.Unlock()

	result, err := lifecycle.AdvancePhases(ctx)
	if err != nil {
		logger.Error("Lateness sweep failed", zap.Error(err))
		return
	}
	logger.Debug("Lateness sweep finished",
		zap.Int("checked", result.Checked),
		zap.Int("flagged", result.Flagged),
		zap.Int("cleared", result.Cleared),
	)
}

// RunSweepLoop sweeps once on startup and then every interval until ctx is
// done. Reads sweep on their own, so this only keeps flags fresh for
// clients that poll rarely.
func RunSweepLoop(ctx context.Context, lifecycle *OrderLifecycle, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("Background lateness sweep disabled")
		return
	}

	RunSweepOnce(ctx, lifecycle, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunSweepOnce(ctx, lifecycle, logger)
		}
	}
}
