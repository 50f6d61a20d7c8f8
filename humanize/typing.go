package humanize

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
)

// TypingConfig holds timing for character-by-character text entry.
type TypingConfig struct {
	// Per-character delay bounds in milliseconds.
	MinDelayMs int
	MaxDelayMs int

	// Probability (0-100) of a longer "thinking" pause after a character,
	// and its bounds.
	ThinkPauseProbability int
	ThinkPauseMinMs       int
	ThinkPauseMaxMs       int

	// Rng overrides the shared random source; tests inject a seeded one.
	Rng *rand.Rand
}

// DefaultTypingConfig returns the cadence used for comments. Instant text
// insertion has zero keystroke events and a fixed-interval loop is just as
// recognizable; the uniform jitter plus occasional pauses avoid both
// signatures.
func DefaultTypingConfig() *TypingConfig {
	return &TypingConfig{
		MinDelayMs:            50,
		MaxDelayMs:            150,
		ThinkPauseProbability: 10,
		ThinkPauseMinMs:       200,
		ThinkPauseMaxMs:       700,
	}
}

// TypeInto clears the element and types text into it one character at a
// time. Works for both content-editable surfaces and native inputs: rod's
// Input dispatches real insertText/input events either way.
func TypeInto(ctx context.Context, el *rod.Element, text string, cfg *TypingConfig) error {
	if cfg == nil {
		cfg = DefaultTypingConfig()
	}

	if err := clearSurface(el); err != nil {
		return errors.Wrap(err, "clear input")
	}
	if err := SleepMillis(ctx, 80, 180); err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return errors.Wrap(err, "focus input")
	}
	if err := SleepMillis(ctx, 40, 100); err != nil {
		return err
	}

	for _, ch := range text {
		if err := el.Input(string(ch)); err != nil {
			return errors.Wrap(err, "type character")
		}
		if err := Sleep(ctx, keystrokeDelay(cfg)); err != nil {
			return err
		}
	}
	return nil
}

// keystrokeDelay draws one inter-character delay.
func keystrokeDelay(cfg *TypingConfig) time.Duration {
	d := randomMillisFrom(cfg.Rng, cfg.MinDelayMs, cfg.MaxDelayMs)
	if intn(cfg.Rng, 100) < cfg.ThinkPauseProbability {
		d += randomMillisFrom(cfg.Rng, cfg.ThinkPauseMinMs, cfg.ThinkPauseMaxMs)
	}
	return d
}

// clearSurface empties whatever is in the element.
func clearSurface(el *rod.Element) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input("")
}
