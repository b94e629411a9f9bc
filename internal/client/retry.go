package client

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy bounds connect attempts within one round.
//
// Count < 0 retries forever, 0 makes a single attempt, N > 0 allows N more
// attempts after the first. Multiplier 1 (or 0) keeps Delay fixed.
type RetryPolicy struct {
	Count      int
	Delay      time.Duration
	Multiplier float64
	MaxDelay   time.Duration
	Jitter     bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Count:      0,
		Delay:      500 * time.Millisecond,
		Multiplier: 1.0,
	}
}

// Allows reports whether another attempt may follow failed attempt N (1-based).
func (p RetryPolicy) Allows(attempt int) bool {
	if p.Count < 0 {
		return true
	}
	return attempt <= p.Count
}

// NextDelay returns the wait after failed attempt N (1-based).
func (p RetryPolicy) NextDelay(attempt int, rng *rand.Rand) time.Duration {
	if p.Delay <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(p.Delay)
	if attempt > 1 {
		delay *= math.Pow(mult, float64(attempt-1))
	}
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.Jitter {
		f := 0.5
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
