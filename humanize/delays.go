// Package humanize drives every synthetic interaction — cursor movement,
// clicks, typing, waits — with the irregular timing a real person produces.
package humanize

import (
	"context"
	"math/rand"
	"time"
)

// RandomMillis returns a random duration between min and max milliseconds,
// drawn from the shared source.
func RandomMillis(min, max int) time.Duration {
	return randomMillisFrom(nil, min, max)
}

// randomMillisFrom draws from rng when provided, falling back to the shared
// goroutine-safe source. Configs carry an optional rng so tests can pin the
// timing decisions.
func randomMillisFrom(rng *rand.Rand, min, max int) time.Duration {
	if min >= max {
		return time.Duration(min) * time.Millisecond
	}
	n := intn(rng, max-min+1) + min
	return time.Duration(n) * time.Millisecond
}

func intn(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.Intn(n)
	}
	return rand.Intn(n)
}

func randFloat(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return rand.Float64()
}

// Sleep blocks for d, returning early with the context error when the
// context is cancelled. Every engine suspension point goes through here so
// Stop() takes effect at the next wait.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SleepMillis sleeps a random duration between min and max milliseconds,
// observing cancellation.
func SleepMillis(ctx context.Context, min, max int) error {
	return Sleep(ctx, RandomMillis(min, max))
}
