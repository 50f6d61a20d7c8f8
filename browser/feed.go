// Package browser binds the engagement engine to a live Chromium tab via
// rod. It implements the engine's Feed and Post interfaces on top of the
// platform selector profiles, with all pointer and keyboard activity routed
// through the humanize package.
package browser

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/velvetkeys/engagekit/engine"
	"github.com/velvetkeys/engagekit/humanize"
	"github.com/velvetkeys/engagekit/platform"
)

// keyAttr is stamped onto feed items that expose no stable identifier of
// their own, so the same DOM node keys identically across scans.
const keyAttr = "data-ek-key"

// An ArrowDown press scrolls roughly this many pixels in Chromium.
const arrowScrollPx = 40

// Feed drives one platform feed in one tab.
type Feed struct {
	page    *rod.Page
	profile platform.Profile
	cursor  *humanize.Cursor
	typing  *humanize.TypingConfig
	log     *logrus.Entry
}

// NewFeed wraps an already-navigated page.
func NewFeed(page *rod.Page, profile platform.Profile) *Feed {
	return &Feed{
		page:    page,
		profile: profile,
		cursor:  humanize.NewCursor(page),
		typing:  humanize.DefaultTypingConfig(),
		log:     logrus.WithField("platform", profile.Name),
	}
}

// Posts scans the page for feed items in DOM order.
func (f *Feed) Posts() ([]engine.Post, error) {
	els, err := f.page.Elements(f.profile.PostSelector)
	if err != nil {
		return nil, errors.Wrap(err, "post scan")
	}
	posts := make([]engine.Post, 0, len(els))
	for _, el := range els {
		posts = append(posts, &Post{feed: f, el: el, key: f.postKey(el)})
	}
	return posts, nil
}

// postKey derives a stable identifier for one feed item: the platform's id
// attribute, else the permalink, else a generated attribute stamped onto
// the node so revisits agree.
func (f *Feed) postKey(el *rod.Element) string {
	if f.profile.PostIDAttr != "" {
		if v, err := el.Attribute(f.profile.PostIDAttr); err == nil && v != nil && *v != "" {
			return *v
		}
	}
	if f.profile.LinkSelector != "" {
		if has, link, err := el.Has(f.profile.LinkSelector); err == nil && has {
			if href, err := link.Attribute("href"); err == nil && href != nil && *href != "" {
				return *href
			}
		}
	}
	res, err := el.Eval(`(attr) => {
		if (!this.hasAttribute(attr)) {
			this.setAttribute(attr, 'ek-' + Math.random().toString(36).slice(2) + Date.now().toString(36));
		}
		return this.getAttribute(attr);
	}`, keyAttr)
	if err != nil {
		// Unkeyable node; a throwaway key means it may be revisited.
		return fmt.Sprintf("ek-volatile-%d", rand.Int63())
	}
	return res.Value.Str()
}

// NearBottom reports whether the scroll position is within threshold pixels
// of the document end.
func (f *Feed) NearBottom(threshold float64) (bool, error) {
	res, err := f.page.Eval(`(th) => (window.innerHeight + window.scrollY) >= (document.documentElement.scrollHeight - th)`, threshold)
	if err != nil {
		return false, errors.Wrap(err, "bottom check")
	}
	return res.Value.Bool(), nil
}

// ScrollStep advances the feed by roughly amount pixels, either with
// repeated ArrowDown presses or a mouse wheel gesture.
func (f *Feed) ScrollStep(ctx context.Context, amount int, viaKeyboard bool) error {
	page := f.page.Context(ctx)
	if viaKeyboard {
		presses := amount / arrowScrollPx
		if presses < 1 {
			presses = 1
		}
		for i := 0; i < presses; i++ {
			if err := page.Keyboard.Press(input.ArrowDown); err != nil {
				return errors.Wrap(err, "keyboard scroll")
			}
			if err := humanize.SleepMillis(ctx, 30, 80); err != nil {
				return err
			}
		}
		return nil
	}
	if err := page.Mouse.Scroll(0, float64(amount), 3); err != nil {
		return errors.Wrap(err, "wheel scroll")
	}
	return nil
}

// Notify shows a transient toast in the page corner. Failures are logged
// and swallowed; notifications are advisory.
func (f *Feed) Notify(message string) {
	_, err := f.page.Eval(`(msg) => {
		const id = 'ek-toast';
		document.getElementById(id)?.remove();
		const d = document.createElement('div');
		d.id = id;
		d.textContent = msg;
		d.style.cssText = 'position:fixed;top:16px;right:16px;z-index:2147483647;' +
			'background:rgba(20,20,20,.92);color:#fff;padding:10px 16px;border-radius:8px;' +
			'font:13px/1.4 system-ui,sans-serif;box-shadow:0 4px 16px rgba(0,0,0,.3);' +
			'transition:opacity .4s;opacity:1';
		document.body.appendChild(d);
		setTimeout(() => { d.style.opacity = '0'; setTimeout(() => d.remove(), 450); }, 3500);
	}`, message)
	if err != nil {
		f.log.Debugf("notification failed: %v", err)
	}
}

// Page exposes the underlying tab for callers that need direct access,
// such as graceful shutdown.
func (f *Feed) Page() *rod.Page {
	return f.page
}

// settleAfterSubmit is how long composition waits after submitting before
// declaring success.
func settleAfterSubmit(ctx context.Context) error {
	return humanize.SleepMillis(ctx, 500, 1000)
}

var _ engine.Feed = (*Feed)(nil)
