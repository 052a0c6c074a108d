// Package contextsweep periodically evicts expired user contexts from the
// assistant's context cache.
package contextsweep

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often expired contexts are swept.
const DefaultInterval = 10 * time.Minute

// Sweeper removes expired entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

type Runner struct {
	sweeper  Sweeper
	interval time.Duration
}

// NewRunner creates a sweep runner. A non-positive interval uses DefaultInterval.
func NewRunner(sweeper Sweeper, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		sweeper:  sweeper,
		interval: interval,
	}
}

// Run sweeps on every tick until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("context sweep runner stopped")
			return
		}
	}
}

// RunOnce performs a single sweep.
func (r *Runner) RunOnce(_ context.Context) {
	if removed := r.sweeper.Sweep(); removed > 0 {
		slog.Debug("swept expired user contexts", "count", removed)
	}
}
