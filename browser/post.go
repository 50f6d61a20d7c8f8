package browser

import (
	"context"
	"strings"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"

	"github.com/velvetkeys/engagekit/engine"
	"github.com/velvetkeys/engagekit/platform"
)

// Post is one feed item bound to its DOM element.
type Post struct {
	feed *Feed
	el   *rod.Element
	key  string
}

var _ engine.Post = (*Post)(nil)

func (p *Post) Key() string { return p.key }

// InViewport reports whether any part of the post is on screen.
func (p *Post) InViewport() (bool, error) {
	b, err := boundingBox(p.el)
	if err != nil {
		return false, nil
	}
	vw, vh, err := viewportSize(p.feed.page)
	if err != nil {
		return false, err
	}
	return intersectsViewport(b, vw, vh), nil
}

// ControlsInView reports whether the action bar region of the post, which
// sits along its bottom edge, is fully visible.
func (p *Post) ControlsInView() (bool, error) {
	b, err := boundingBox(p.el)
	if err != nil {
		return false, err
	}
	_, vh, err := viewportSize(p.feed.page)
	if err != nil {
		return false, err
	}
	return b.bottom > 0 && b.bottom <= vh, nil
}

// CenterControls smoothly scrolls the post toward the viewport center so
// its action bar lands on screen.
func (p *Post) CenterControls(ctx context.Context) error {
	_, err := p.el.Context(ctx).Eval(`() => this.scrollIntoView({block: 'center', behavior: 'smooth'})`)
	return errors.Wrap(err, "center post")
}

// Highlight outlines the post for a few seconds.
func (p *Post) Highlight() error {
	_, err := p.el.Eval(`() => {
		const prev = this.style.outline;
		this.style.outline = '3px solid #e91e63';
		this.style.outlineOffset = '2px';
		setTimeout(() => { this.style.outline = prev; this.style.outlineOffset = ''; }, 4000);
	}`)
	return errors.Wrap(err, "highlight post")
}

// Info runs identity extraction against the platform's selector hints.
// It fails only when nothing identifying could be pulled out at all.
func (p *Post) Info() (platform.PostInfo, error) {
	profile := p.feed.profile
	info := platform.PostInfo{}

	if profile.LinkSelector != "" {
		if has, link, err := p.el.Has(profile.LinkSelector); err == nil && has {
			if href, err := link.Attribute("href"); err == nil && href != nil {
				info.URL = absoluteURL(p.feed.page, *href)
			}
		}
	}

	info.Author = p.firstText(profile.AuthorSelectors)
	info.Content = p.firstText(profile.ContentSelectors)

	for _, sel := range profile.AgeSelectors {
		if has, el, err := p.el.Has(sel); err == nil && has {
			if text, err := el.Text(); err == nil {
				if hours, ok := platform.ParseAgeHours(text); ok {
					info.AgeHours = hours
					info.HasAge = true
					break
				}
			}
		}
	}

	info.Promoted = p.isPromoted()
	if profile.CompanySelector != "" {
		if has, _, err := p.el.Has(profile.CompanySelector); err == nil && has {
			info.CompanyPage = true
		}
	}
	if profile.FriendActivitySelector != "" {
		if has, _, err := p.el.Has(profile.FriendActivitySelector); err == nil && has {
			info.FriendActivity = true
		}
	}

	if info.URL == "" && info.Author == "" && info.Content == "" {
		return info, errors.New("no identifiers extracted")
	}
	return info, nil
}

func (p *Post) isPromoted() bool {
	profile := p.feed.profile
	if profile.PromotedSelector != "" {
		if has, _, err := p.el.Has(profile.PromotedSelector); err == nil && has {
			return true
		}
	}
	if len(profile.PromotedKeywords) == 0 {
		return false
	}
	// Keywords like "Promoted" sit in the post header, so only the leading
	// slice of the text is inspected.
	text, err := p.el.Text()
	if err != nil {
		return false
	}
	if len(text) > 300 {
		text = text[:300]
	}
	for _, kw := range profile.PromotedKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// firstText returns the first non-empty trimmed text among the selectors.
func (p *Post) firstText(selectors []string) string {
	for _, sel := range selectors {
		if has, el, err := p.el.Has(sel); err == nil && has {
			if text, err := el.Text(); err == nil {
				if t := strings.TrimSpace(text); t != "" {
					return t
				}
			}
		}
	}
	return ""
}

// FindExpand locates an unconsumed see-more control whose label belongs to
// the platform's expand vocabulary.
func (p *Post) FindExpand() (engine.Clickable, error) {
	els, err := p.el.Elements(p.feed.profile.ExpandSelector)
	if err != nil {
		return nil, errors.Wrap(err, "expand scan")
	}
	for _, el := range els {
		if !p.feed.profile.MatchesExpand(controlLabel(el)) {
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		return &control{feed: p.feed, el: el}, nil
	}
	return nil, engine.ErrNoExpandControl
}

// FindLike locates the like toggle, weeding out reaction counters, and
// rejects posts that are already liked.
func (p *Post) FindLike() (engine.Clickable, error) {
	els, err := p.el.Elements(p.feed.profile.LikeSelector)
	if err != nil {
		return nil, errors.Wrap(err, "like scan")
	}
	cands := make([]platform.LikeCandidate, len(els))
	for i, el := range els {
		cands[i] = platform.LikeCandidate{
			Label:     controlLabel(el),
			IsCounter: hasAttr(el, p.feed.profile.CounterAttr),
			Pressed:   attrEquals(el, "aria-pressed", "true"),
		}
	}
	idx := platform.PickLikeControl(cands)
	if idx < 0 {
		return nil, engine.ErrNoLikeControl
	}
	if cands[idx].Pressed {
		return nil, engine.ErrAlreadyLiked
	}
	return &control{feed: p.feed, el: els[idx]}, nil
}

// control is a clickable element routed through the human cursor.
type control struct {
	feed *Feed
	el   *rod.Element
}

func (c *control) Click(ctx context.Context) error {
	return c.feed.cursor.Click(ctx, c.el)
}

// controlLabel pulls the accessible label of a control, falling back to its
// visible text.
func controlLabel(el *rod.Element) string {
	if v, err := el.Attribute("aria-label"); err == nil && v != nil && *v != "" {
		return strings.TrimSpace(*v)
	}
	if text, err := el.Text(); err == nil {
		return strings.TrimSpace(text)
	}
	return ""
}

func hasAttr(el *rod.Element, name string) bool {
	if name == "" {
		return false
	}
	v, err := el.Attribute(name)
	return err == nil && v != nil
}

func attrEquals(el *rod.Element, name, want string) bool {
	v, err := el.Attribute(name)
	return err == nil && v != nil && *v == want
}

// absoluteURL resolves href against the page location.
func absoluteURL(page *rod.Page, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	res, err := page.Eval(`(h) => new URL(h, window.location.href).href`, href)
	if err != nil {
		return href
	}
	return res.Value.Str()
}
