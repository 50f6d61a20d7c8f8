package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/velvetkeys/engagekit/platform"
)

// Expected aborts from post operations. Each one ends the current action
// only, never the cycle.
var (
	ErrNoLikeControl    = errors.New("no like control found")
	ErrAlreadyLiked     = errors.New("control already reports liked state")
	ErrNoExpandControl  = errors.New("no expand control found")
	ErrNoCommentControl = errors.New("no comment-open control found")
	ErrNoInputSurface   = errors.New("no comment input surface found")
	ErrNoSubmitControl  = errors.New("no submit mechanism found")
)

// Clickable is a control the engine can click through the human-behavior
// simulator.
type Clickable interface {
	Click(ctx context.Context) error
}

// Post is one feed item. The rod-backed implementation lives in the browser
// package; tests substitute fakes.
type Post interface {
	// Key returns a stable identity for the session-level engaged map. When
	// the platform exposes no stable id, implementations assign a generated
	// one on first call.
	Key() string

	// InViewport reports whether the post geometrically intersects the
	// viewport.
	InViewport() (bool, error)

	// ControlsInView reports whether the post's interaction controls are
	// fully within the viewport.
	ControlsInView() (bool, error)

	// CenterControls smooth-scrolls so the lowest interaction control sits
	// vertically centered.
	CenterControls(ctx context.Context) error

	// Info extracts the post's identifiers and heuristics. Partial results
	// with an error are allowed; the engine degrades gracefully.
	Info() (platform.PostInfo, error)

	// FindExpand locates an unclicked, visible expand control. Returns
	// ErrNoExpandControl when the post has none.
	FindExpand() (Clickable, error)

	// FindLike locates the like toggle. Returns ErrNoLikeControl or
	// ErrAlreadyLiked when no engageable toggle exists.
	FindLike() (Clickable, error)

	// Comment runs the full comment-composition sequence with the given
	// text: open, find input, click, type, submit.
	Comment(ctx context.Context, text string) error

	// Highlight visually marks the post, for diagnostics.
	Highlight() error
}

// Feed is the engine's view of the page.
type Feed interface {
	// Posts returns every post the selector profile matches, in DOM order.
	Posts() ([]Post, error)

	// NearBottom reports whether the page is within threshold pixels of its
	// bottom.
	NearBottom(threshold float64) (bool, error)

	// ScrollStep scrolls down by roughly amount pixels, via a simulated
	// key press when viaKeyboard is set, else a direct wheel scroll.
	ScrollStep(ctx context.Context, amount int, viaKeyboard bool) error

	// Notify shows a transient on-screen notification.
	Notify(message string)
}
