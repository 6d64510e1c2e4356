package pomodoro

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner drives a Timer from a ticker. It is used when no interactive view
// owns the timer.
type Runner struct {
	Timer    *Timer
	Interval time.Duration
	Now      func() time.Time
	Logger   *zap.Logger

	// OnTick is called after every tick with the remaining time.
	OnTick func(phase Phase, remaining time.Duration)
	// OnComplete is called for every phase the timer completes.
	OnComplete func(Session)
}

// Run ticks until ctx is canceled or the timer is left idle after a phase
// completes. An idle timer returns immediately.
func (r *Runner) Run(ctx context.Context) error {
	if r.Timer.State() == StateIdle {
		return nil
	}
	interval := r.Interval
	if interval <= 0 {
		interval = time.Second
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t := now()
			for s := r.Timer.Tick(t); s != nil; s = r.Timer.Tick(t) {
				log.Info("pomodoro phase completed",
					zap.String("phase", string(s.Phase)),
					zap.String("task", s.TaskID),
					zap.Duration("elapsed", s.Elapsed))
				if r.OnComplete != nil {
					r.OnComplete(*s)
				}
			}
			if r.Timer.State() == StateIdle {
				return nil
			}
			if r.OnTick != nil {
				r.OnTick(r.Timer.Phase(), r.Timer.Remaining(t))
			}
		}
	}
}
