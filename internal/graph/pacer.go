package graph

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces successive remote writes to stay under service throttling limits.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one write per delay. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next write may proceed.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
