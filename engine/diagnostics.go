package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/velvetkeys/engagekit/platform"
	"github.com/velvetkeys/engagekit/templates"
)

// ErrEngineRunning is returned by diagnostic one-shots invoked while the
// perpetual cycle is active.
var ErrEngineRunning = errors.New("engine is running, stop it before diagnostics")

// ErrNoVisiblePost is returned when no post intersects the viewport.
var ErrNoVisiblePost = errors.New("no post in viewport")

// TestHighlight outlines the first viewport post so the operator can see
// which element the selectors resolve to.
func (e *Engine) TestHighlight() error {
	post, err := e.firstVisiblePost()
	if err != nil {
		return err
	}
	if err := post.Highlight(); err != nil {
		return errors.Wrap(err, "highlight")
	}
	e.feed.Notify("Post highlighted")
	return nil
}

// TestExtract runs identity extraction on the first viewport post and
// returns what the selectors found.
func (e *Engine) TestExtract() (platform.PostInfo, error) {
	post, err := e.firstVisiblePost()
	if err != nil {
		return platform.PostInfo{}, err
	}
	info, err := post.Info()
	if err != nil {
		return platform.PostInfo{}, errors.Wrap(err, "extract")
	}
	e.feed.Notify(fmt.Sprintf("Extracted: author=%q age=%.0fh promoted=%v", info.Author, info.AgeHours, info.Promoted))
	return info, nil
}

// TestLike performs a single real like on the first viewport post, honoring
// the safety limits. The post is not marked engaged.
func (e *Engine) TestLike(ctx context.Context) error {
	if e.Running() {
		return ErrEngineRunning
	}
	post, err := e.firstVisiblePost()
	if err != nil {
		return err
	}
	c, err := post.FindLike()
	if err != nil {
		e.feed.Notify("Test like: no like control found")
		return err
	}
	if !e.safety.CanLike() {
		e.feed.Notify("Test like: blocked by safety limits")
		return errors.New("like blocked by safety limits")
	}
	if err := c.Click(ctx); err != nil {
		return errors.Wrap(err, "test like click")
	}
	e.safety.RecordLike()
	e.feed.Notify("Test like: clicked")
	e.log.Info("🧪 test like performed")
	return nil
}

// TestComment performs a single real comment on the first viewport post,
// honoring safety limits and duplicate checks.
func (e *Engine) TestComment(ctx context.Context) error {
	if e.Running() {
		return ErrEngineRunning
	}
	post, err := e.firstVisiblePost()
	if err != nil {
		return err
	}
	if !e.safety.CanComment() {
		e.feed.Notify("Test comment: blocked by safety limits")
		return errors.New("comment blocked by safety limits")
	}

	info, err := post.Info()
	if err != nil && e.profile.StrictDuplicateChecks {
		return errors.Wrap(err, "test comment extraction")
	}
	if err == nil {
		if e.dedup.HasEngagedURL(info.URL) {
			e.feed.Notify("Test comment: URL already engaged")
			return errors.New("post URL already engaged")
		}
		if e.dedup.HasEngagedAuthor(info.Author, authorCooldown) {
			e.feed.Notify("Test comment: author engaged within 24h")
			return errors.New("author engaged within 24h")
		}
	}

	text := e.templates.Generate(templates.Context{AuthorName: info.Author})
	if text == "" {
		return errors.New("empty comment generated")
	}
	if err := post.Comment(ctx, text); err != nil {
		return errors.Wrap(err, "test comment")
	}
	e.safety.RecordComment()
	e.dedup.RecordEngagement(info.URL, info.Author, info.Content)
	e.feed.Notify("Test comment: posted")
	e.log.Info("🧪 test comment performed")
	return nil
}

func (e *Engine) firstVisiblePost() (Post, error) {
	posts, err := e.feed.Posts()
	if err != nil {
		return nil, errors.Wrap(err, "post scan")
	}
	for _, p := range posts {
		visible, err := p.InViewport()
		if err == nil && visible {
			return p, nil
		}
	}
	return nil, ErrNoVisiblePost
}
