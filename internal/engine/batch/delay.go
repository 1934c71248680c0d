package batch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DelayPolicy spaces consecutive applications so the batch does not hammer
// portals. The default is a fixed interval; swap the limiter for tests.
type DelayPolicy struct {
	limiter *rate.Limiter
}

// NewDelayPolicy builds a policy enforcing one application per interval.
// A non-positive interval disables spacing.
func NewDelayPolicy(interval time.Duration) *DelayPolicy {
	if interval <= 0 {
		return &DelayPolicy{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	// Limiters start with a full bucket; drain it so the very first Wait
	// already blocks for the interval instead of returning immediately.
	limiter.Allow()
	return &DelayPolicy{limiter: limiter}
}

// Wait blocks until the next application may start, or the context ends.
func (d *DelayPolicy) Wait(ctx context.Context) error {
	return d.limiter.Wait(ctx)
}
