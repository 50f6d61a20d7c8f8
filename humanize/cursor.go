package humanize

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
)

// CursorConfig holds tuning for cursor movement.
type CursorConfig struct {
	// Control-point perturbation per axis, in pixels.
	ControlJitter float64

	// Duration bounds for one move.
	MinMoveMs int
	MaxMoveMs int

	// Milliseconds of animation per pixel of distance, before clamping.
	MsPerPixel float64

	// Milliseconds between animation frames.
	FrameMs int

	// Rng overrides the shared random source; tests inject a seeded one.
	Rng *rand.Rand
}

// DefaultCursorConfig returns balanced settings for human-like movement.
func DefaultCursorConfig() *CursorConfig {
	return &CursorConfig{
		ControlJitter: 50,
		MinMoveMs:     300,
		MaxMoveMs:     1500,
		MsPerPixel:    1.2,
		FrameMs:       16,
	}
}

// Cursor owns one synthetic cursor overlay plus the real CDP mouse, and
// moves both together so the on-page visual matches the dispatched events.
type Cursor struct {
	page *rod.Page
	cfg  *CursorConfig

	x, y      float64
	installed bool
}

// NewCursor creates a cursor for a page. The overlay element is injected
// lazily on first movement.
func NewCursor(page *rod.Page) *Cursor {
	return &Cursor{page: page, cfg: DefaultCursorConfig()}
}

const cursorOverlayJS = `() => {
	if (document.getElementById('ek-cursor')) return;
	const c = document.createElement('div');
	c.id = 'ek-cursor';
	c.style.cssText = 'position:fixed;z-index:2147483647;width:14px;height:14px;' +
		'border-radius:50%;background:rgba(66,133,244,0.85);pointer-events:none;' +
		'transform:translate(-50%,-50%);transition:width .1s,height .1s;left:0;top:0;';
	document.body.appendChild(c);
}`

func (c *Cursor) ensureOverlay() {
	if c.installed {
		return
	}
	if _, err := c.page.Eval(cursorOverlayJS); err == nil {
		c.installed = true
	}
}

// MoveTo animates the cursor to (x, y) along a quadratic Bézier curve with a
// randomly perturbed control point and cubic ease-out timing. Duration scales
// with distance, clamped to the configured bounds.
func (c *Cursor) MoveTo(ctx context.Context, x, y float64) error {
	c.ensureOverlay()

	from := proto.Point{X: c.x, Y: c.y}
	to := proto.Point{X: x, Y: y}

	// A cursor that never moved starts somewhere plausible mid-viewport.
	if from.X == 0 && from.Y == 0 {
		from = c.randomViewportPoint()
	}

	dist := math.Hypot(to.X-from.X, to.Y-from.Y)
	if dist < 3 {
		return c.place(to)
	}

	durMs := dist * c.cfg.MsPerPixel
	durMs = math.Max(float64(c.cfg.MinMoveMs), math.Min(float64(c.cfg.MaxMoveMs), durMs))

	ctrl := proto.Point{
		X: (from.X+to.X)/2 + (randFloat(c.cfg.Rng)*2-1)*c.cfg.ControlJitter,
		Y: (from.Y+to.Y)/2 + (randFloat(c.cfg.Rng)*2-1)*c.cfg.ControlJitter,
	}

	steps := int(durMs) / c.cfg.FrameMs
	if steps < 2 {
		steps = 2
	}

	for i := 1; i <= steps; i++ {
		t := easeOutCubic(float64(i) / float64(steps))
		pos := quadBezier(from, ctrl, to, t)
		if err := c.place(pos); err != nil {
			return err
		}
		if err := Sleep(ctx, time.Duration(c.cfg.FrameMs)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// place moves both the CDP mouse and the overlay to pos.
func (c *Cursor) place(pos proto.Point) error {
	if err := c.page.Mouse.MoveTo(pos); err != nil {
		return errors.Wrap(err, "mouse move")
	}
	c.x, c.y = pos.X, pos.Y
	if c.installed {
		_, _ = c.page.Eval(`(x, y) => {
			const el = document.getElementById('ek-cursor');
			if (el) { el.style.left = x + 'px'; el.style.top = y + 'px'; }
		}`, pos.X, pos.Y)
	}
	return nil
}

// Click moves to the element and clicks it: press animation on the overlay,
// a native click through CDP, and a brief human reaction delay in between.
func (c *Cursor) Click(ctx context.Context, el *rod.Element) error {
	x, y, err := elementCenter(el, c.cfg.Rng)
	if err != nil {
		// Geometry unavailable; fall back to rod's own click.
		return el.Click(proto.InputMouseButtonLeft, 1)
	}
	return c.ClickAt(ctx, x, y)
}

// ClickAt moves to the point and clicks there.
func (c *Cursor) ClickAt(ctx context.Context, x, y float64) error {
	if err := c.MoveTo(ctx, x, y); err != nil {
		return err
	}
	if err := Sleep(ctx, RandomMillis(30, 100)); err != nil {
		return err
	}

	c.pressAnimation()
	if err := c.page.Mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errors.Wrap(err, "mouse click")
	}
	return nil
}

// pressAnimation briefly shrinks the overlay to signal a click.
func (c *Cursor) pressAnimation() {
	if !c.installed {
		return
	}
	_, _ = c.page.Eval(`() => {
		const el = document.getElementById('ek-cursor');
		if (!el) return;
		el.style.width = '9px';
		el.style.height = '9px';
		setTimeout(() => { el.style.width = '14px'; el.style.height = '14px'; }, 120);
	}`)
}

// Position returns the cursor's last known position.
func (c *Cursor) Position() (float64, float64) {
	return c.x, c.y
}

func (c *Cursor) randomViewportPoint() proto.Point {
	result, err := c.page.Eval(`() => ({ w: window.innerWidth, h: window.innerHeight })`)
	if err != nil {
		return proto.Point{X: 400, Y: 300}
	}
	w := result.Value.Get("w").Num()
	h := result.Value.Get("h").Num()
	return proto.Point{
		X: w * (0.3 + randFloat(c.cfg.Rng)*0.4),
		Y: h * (0.3 + randFloat(c.cfg.Rng)*0.4),
	}
}

// quadBezier evaluates a quadratic Bézier curve at t.
func quadBezier(p0, p1, p2 proto.Point, t float64) proto.Point {
	mt := 1 - t
	return proto.Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

// easeOutCubic decelerates into the target.
func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// elementCenter computes the center of an element's first box quad, with a
// small random offset so clicks don't always land dead center.
func elementCenter(el *rod.Element, rng *rand.Rand) (float64, float64, error) {
	shape, err := el.Shape()
	if err != nil {
		return 0, 0, err
	}
	if shape == nil || len(shape.Quads) == 0 {
		return 0, 0, errors.New("element has no box")
	}

	quad := shape.Quads[0]
	x := (quad[0] + quad[2] + quad[4] + quad[6]) / 4
	y := (quad[1] + quad[3] + quad[5] + quad[7]) / 4

	w := math.Abs(quad[2] - quad[0])
	h := math.Abs(quad[5] - quad[1])
	x += (randFloat(rng) - 0.5) * w * 0.3
	y += (randFloat(rng) - 0.5) * h * 0.3
	return x, y, nil
}
