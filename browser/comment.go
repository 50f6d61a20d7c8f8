package browser

import (
	"context"
	"math"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/pkg/errors"

	"github.com/velvetkeys/engagekit/engine"
	"github.com/velvetkeys/engagekit/humanize"
	"github.com/velvetkeys/engagekit/platform"
)

// Comment runs the full composition sequence: open the comment surface,
// wait for it to render, locate an editable input, type with human cadence
// and submit.
func (p *Post) Comment(ctx context.Context, text string) error {
	profile := p.feed.profile

	opener, err := p.findCommentControl()
	if err != nil {
		return err
	}
	scope, err := p.scopeRoot()
	if err != nil {
		return err
	}
	if err := p.feed.cursor.Click(ctx, opener); err != nil {
		return errors.Wrap(err, "open comment surface")
	}

	// The input is rendered lazily after the click.
	if err := humanize.SleepMillis(ctx, 500, 1200); err != nil {
		return err
	}

	surface, err := p.findInputSurface(scope, opener)
	if err != nil {
		return err
	}

	// Clicking a little above center avoids focusing a non-editable border
	// region some composers render around the input.
	if err := p.clickAboveCenter(ctx, surface); err != nil {
		return errors.Wrap(err, "focus input surface")
	}
	if err := humanize.TypeInto(ctx, surface, text, p.feed.typing); err != nil {
		return errors.Wrap(err, "type comment")
	}

	if err := humanize.SleepMillis(ctx, 300, 900); err != nil {
		return err
	}

	switch profile.Submit {
	case platform.SubmitEnter:
		if err := p.feed.page.Context(ctx).Keyboard.Press(input.Enter); err != nil {
			return errors.Wrap(err, "submit via enter")
		}
	default:
		submit, err := p.findSubmitControl(surface, scope)
		if err != nil {
			return err
		}
		if err := p.feed.cursor.Click(ctx, submit); err != nil {
			return errors.Wrap(err, "submit click")
		}
	}

	return settleAfterSubmit(ctx)
}

// findCommentControl locates the visible control that opens the comment
// surface.
func (p *Post) findCommentControl() (*rod.Element, error) {
	els, err := p.el.Elements(p.feed.profile.CommentSelector)
	if err != nil {
		return nil, errors.Wrap(err, "comment control scan")
	}
	for _, el := range els {
		if visible, err := el.Visible(); err == nil && visible {
			return el, nil
		}
	}
	return nil, engine.ErrNoCommentControl
}

// scopeRoot picks the element that bounds composer discovery: the post
// element while it still has geometry, else the nearest ancestor carrying
// the stable post id attribute, else the nearest article ancestor.
func (p *Post) scopeRoot() (*rod.Element, error) {
	if _, err := boundingBox(p.el); err == nil {
		return p.el, nil
	}
	if attr := p.feed.profile.PostIDAttr; attr != "" {
		if el, err := p.el.ElementByJS(rod.Eval(`(sel) => this.closest(sel)`, "["+attr+"]")); err == nil && el != nil {
			return el, nil
		}
	}
	if el, err := p.el.ElementByJS(rod.Eval(`() => this.closest('article')`)); err == nil && el != nil {
		return el, nil
	}
	return nil, errors.New("no scope root for comment composition")
}

// surfaceCandidate is one potential comment input, reduced to the facts the
// choice needs.
type surfaceCandidate struct {
	el       *rod.Element
	editable bool    // visible and accepts text
	inScope  bool    // inside the scope root
	distance float64 // from the opener control
}

// chooseSurface picks the closest editable in-scope candidate, -1 if none.
func chooseSurface(cands []surfaceCandidate) int {
	best := -1
	for i, c := range cands {
		if !c.editable || !c.inScope {
			continue
		}
		if best < 0 || c.distance < cands[best].distance {
			best = i
		}
	}
	return best
}

// findInputSurface locates a visible editable input within the scope root.
// When several candidates qualify under one selector, the one closest to
// the opener control wins. Falls back to whatever element the opener click
// focused, provided it also lies within scope.
func (p *Post) findInputSurface(scope, opener *rod.Element) (*rod.Element, error) {
	ox, oy := elementMidpoint(opener)

	for _, sel := range p.feed.profile.CommentInputSelectors {
		els, err := scope.Elements(sel)
		if err != nil {
			continue
		}
		cands := make([]surfaceCandidate, len(els))
		for i, el := range els {
			cx, cy := elementMidpoint(el)
			cands[i] = surfaceCandidate{
				el:       el,
				editable: isEditable(el),
				inScope:  true, // queried within scope
				distance: math.Hypot(cx-ox, cy-oy),
			}
		}
		if i := chooseSurface(cands); i >= 0 {
			return cands[i].el, nil
		}
	}

	if el, err := p.feed.page.ElementByJS(rod.Eval(`() => document.activeElement`)); err == nil && el != nil {
		inScope, err := scope.ContainsElement(el)
		if err == nil && inScope && isEditable(el) {
			return el, nil
		}
	}
	return nil, engine.ErrNoInputSurface
}

// findSubmitControl ascends from the input surface looking for a submit
// button near it, then widens to the scope root.
func (p *Post) findSubmitControl(surface, scope *rod.Element) (*rod.Element, error) {
	profile := p.feed.profile

	anc := surface
	for level := 0; level < profile.SubmitAscentLevels; level++ {
		parent, err := anc.Parent()
		if err != nil {
			break
		}
		anc = parent
		if el := firstSubmitIn(anc, profile.SubmitSelectors); el != nil {
			return el, nil
		}
	}
	if el := firstSubmitIn(scope, profile.SubmitSelectors); el != nil {
		return el, nil
	}
	return nil, engine.ErrNoSubmitControl
}

func firstSubmitIn(scope *rod.Element, selectors []string) *rod.Element {
	for _, sel := range selectors {
		els, err := scope.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if visible, err := el.Visible(); err != nil || !visible {
				continue
			}
			if hasAttr(el, "disabled") || attrEquals(el, "aria-disabled", "true") {
				continue
			}
			return el
		}
	}
	return nil
}

// clickAboveCenter clicks a point a quarter of the way down from the top
// edge of the element, falling back to a plain cursor click when geometry
// is unavailable.
func (p *Post) clickAboveCenter(ctx context.Context, el *rod.Element) error {
	b, err := boundingBox(el)
	if err != nil {
		return p.feed.cursor.Click(ctx, el)
	}
	x := (b.left + b.right) / 2
	y := b.top + b.height()*0.25
	return p.feed.cursor.ClickAt(ctx, x, y)
}

// elementMidpoint returns the center of the element's bounding box, or the
// origin when it has no geometry.
func elementMidpoint(el *rod.Element) (float64, float64) {
	b, err := boundingBox(el)
	if err != nil {
		return 0, 0
	}
	return (b.left + b.right) / 2, (b.top + b.bottom) / 2
}

// isEditable reports whether the element is visible and accepts text.
func isEditable(el *rod.Element) bool {
	if visible, err := el.Visible(); err != nil || !visible {
		return false
	}
	res, err := el.Eval(`() => this.isContentEditable || this.tagName === 'TEXTAREA' ||
		(this.tagName === 'INPUT' && !['checkbox','radio','button','submit'].includes(this.type))`)
	return err == nil && res.Value.Bool()
}
