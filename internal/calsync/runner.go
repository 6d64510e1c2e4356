package calsync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Runner syncs on a fixed interval until its context is canceled.
type Runner struct {
	Engine   *Engine
	Interval time.Duration
	// Window returns the sync window for a run starting at now.
	Window func(now time.Time) (from, to time.Time)
	Policy Policy
	Logger *zap.Logger
	// OnResult is called after every run.
	OnResult func(Result, error)
}

// Run syncs immediately, then once per Interval. Failed runs are logged
// and retried on the next tick.
func (r *Runner) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if r.Window == nil {
		return fmt.Errorf("sync window is not set")
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r.syncOnce(ctx, log)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.syncOnce(ctx, log)
		}
	}
}

func (r *Runner) syncOnce(ctx context.Context, log *zap.Logger) {
	from, to := r.Window(r.Engine.now())
	res, err := r.Engine.Sync(ctx, Options{From: from, To: to, Policy: r.Policy})
	if err != nil && ctx.Err() == nil {
		log.Error("auto-sync failed", zap.Error(err))
	}
	if r.OnResult != nil {
		r.OnResult(res, err)
	}
}
