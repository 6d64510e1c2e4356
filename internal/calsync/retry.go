package calsync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Retry retries operations that fail with ErrTransient, backing off
// exponentially between attempts.
type Retry struct {
	Attempts int           // total attempts; default 3
	Base     time.Duration // first delay; default 500ms
	Max      time.Duration // delay cap; default 8s
	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetry is the policy used when an Engine has none configured.
var DefaultRetry = Retry{Attempts: 3, Base: 500 * time.Millisecond, Max: 8 * time.Second}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, fails with a non-transient error, or the
// attempts are used up.
func (r Retry) Do(ctx context.Context, log *zap.Logger, op string, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = DefaultRetry.Attempts
	}
	delay := r.Base
	if delay <= 0 {
		delay = DefaultRetry.Base
	}
	max := r.Max
	if max <= 0 {
		max = DefaultRetry.Max
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !errors.Is(err, ErrTransient) {
			return err
		}
		if i == attempts-1 {
			break
		}
		log.Debug("retrying remote call",
			zap.String("op", op), zap.Int("attempt", i+1), zap.Duration("delay", delay), zap.Error(err))
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
		if delay > max {
			delay = max
		}
	}
	return err
}
