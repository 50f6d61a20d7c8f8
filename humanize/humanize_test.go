package humanize

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestRandomMillis(t *testing.T) {
	for i := 0; i < 200; i++ {
		d := RandomMillis(50, 150)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}

	// Degenerate range collapses to min.
	assert.Equal(t, 100*time.Millisecond, RandomMillis(100, 100))
	assert.Equal(t, 100*time.Millisecond, RandomMillis(100, 50))
}

func TestSleepHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepCompletes(t *testing.T) {
	err := Sleep(context.Background(), 5*time.Millisecond)
	assert.NoError(t, err)
}

func TestKeystrokeDelayBounds(t *testing.T) {
	cfg := DefaultTypingConfig()
	for i := 0; i < 500; i++ {
		d := keystrokeDelay(cfg)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		// Max regular delay plus max thinking pause.
		assert.LessOrEqual(t, d, 850*time.Millisecond)
	}
}

func TestQuadBezierEndpoints(t *testing.T) {
	p0 := proto.Point{X: 10, Y: 20}
	p1 := proto.Point{X: 100, Y: 0}
	p2 := proto.Point{X: 200, Y: 300}

	start := quadBezier(p0, p1, p2, 0)
	assert.InDelta(t, p0.X, start.X, 0.001)
	assert.InDelta(t, p0.Y, start.Y, 0.001)

	end := quadBezier(p0, p1, p2, 1)
	assert.InDelta(t, p2.X, end.X, 0.001)
	assert.InDelta(t, p2.Y, end.Y, 0.001)

	// Midpoint is pulled toward the control point.
	mid := quadBezier(p0, p1, p2, 0.5)
	assert.NotEqual(t, (p0.X+p2.X)/2, mid.Y)
}

func TestEaseOutCubic(t *testing.T) {
	assert.InDelta(t, 0, easeOutCubic(0), 0.001)
	assert.InDelta(t, 1, easeOutCubic(1), 0.001)
	// Decelerating: first half covers more than half the progress.
	assert.Greater(t, easeOutCubic(0.5), 0.5)
}

func TestKeystrokeDelayDeterministicWithSeededRng(t *testing.T) {
	draw := func(seed int64) []time.Duration {
		cfg := DefaultTypingConfig()
		cfg.Rng = rand.New(rand.NewSource(seed))
		out := make([]time.Duration, 50)
		for i := range out {
			out[i] = keystrokeDelay(cfg)
		}
		return out
	}

	assert.Equal(t, draw(42), draw(42), "same seed, same cadence")
	assert.NotEqual(t, draw(42), draw(43))
}

func TestRandomMillisFromSeededRng(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		d := randomMillisFrom(rng, 400, 800)
		assert.GreaterOrEqual(t, d, 400*time.Millisecond)
		assert.LessOrEqual(t, d, 800*time.Millisecond)
	}

	// Nil rng falls back to the shared source with the same bounds.
	d := randomMillisFrom(nil, 100, 200)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.LessOrEqual(t, d, 200*time.Millisecond)
}
