package engine

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetkeys/engagekit/dedup"
	"github.com/velvetkeys/engagekit/persistence"
	"github.com/velvetkeys/engagekit/platform"
	"github.com/velvetkeys/engagekit/safety"
	"github.com/velvetkeys/engagekit/templates"
)

type fakeClickable struct {
	clicks int
	err    error
}

func (c *fakeClickable) Click(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}
	c.clicks++
	return nil
}

type fakePost struct {
	key            string
	info           platform.PostInfo
	infoErr        error
	visible        bool
	controlsInView bool
	like           *fakeClickable
	likeErr        error
	expand         *fakeClickable
	expandErr      error
	comments       []string
	commentErr     error
	centered       int
	highlighted    int
}

func (p *fakePost) Key() string                   { return p.key }
func (p *fakePost) InViewport() (bool, error)     { return p.visible, nil }
func (p *fakePost) ControlsInView() (bool, error) { return p.controlsInView, nil }
func (p *fakePost) CenterControls(ctx context.Context) error {
	p.centered++
	p.controlsInView = true
	return nil
}
func (p *fakePost) Info() (platform.PostInfo, error) { return p.info, p.infoErr }
func (p *fakePost) FindExpand() (Clickable, error) {
	if p.expandErr != nil {
		return nil, p.expandErr
	}
	if p.expand == nil {
		return nil, ErrNoExpandControl
	}
	return p.expand, nil
}
func (p *fakePost) FindLike() (Clickable, error) {
	if p.likeErr != nil {
		return nil, p.likeErr
	}
	if p.like == nil {
		return nil, ErrNoLikeControl
	}
	return p.like, nil
}
func (p *fakePost) Comment(ctx context.Context, text string) error {
	if p.commentErr != nil {
		return p.commentErr
	}
	p.comments = append(p.comments, text)
	return nil
}
func (p *fakePost) Highlight() error {
	p.highlighted++
	return nil
}

type fakeFeed struct {
	posts         []*fakePost
	nearBottom    bool
	scrolls       int
	notifications []string
	onScroll      func(f *fakeFeed)
}

func (f *fakeFeed) Posts() ([]Post, error) {
	out := make([]Post, len(f.posts))
	for i, p := range f.posts {
		out[i] = p
	}
	return out, nil
}

func (f *fakeFeed) NearBottom(threshold float64) (bool, error) { return f.nearBottom, nil }

func (f *fakeFeed) ScrollStep(ctx context.Context, amount int, viaKeyboard bool) error {
	f.scrolls++
	if f.onScroll != nil {
		f.onScroll(f)
	}
	return nil
}

func (f *fakeFeed) Notify(message string) { f.notifications = append(f.notifications, message) }

func newTestEngine(t *testing.T, profile platform.Profile, feed Feed) *Engine {
	t.Helper()
	store, err := persistence.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	det := dedup.NewDetector(store)
	lim := safety.NewLimiter(store)
	gen := templates.NewGenerator(profile.Name, []string{"Great point {author_first}"}, rand.New(rand.NewSource(7)))
	return New(profile, feed, det, lim, gen, rand.New(rand.NewSource(7)))
}

func fastSettings() Settings {
	s := DefaultSettings()
	s.ScrollSpeedMin = 1
	s.ScrollSpeedMax = 2
	s.SeeMoreDelayMs = 1
	s.LikeDelayMs = 1
	s.CommentDelayMs = 1
	s.PostEngagementDelayMs = 1
	return s
}

func visiblePost(key, author string) *fakePost {
	return &fakePost{
		key:            key,
		visible:        true,
		controlsInView: true,
		info: platform.PostInfo{
			URL:     "https://example.com/posts/" + key,
			Author:  author,
			Content: "content of " + key,
		},
		like:   &fakeClickable{},
		expand: &fakeClickable{},
	}
}

func TestCycleEngagesFirstFreshPost(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	feed := &fakeFeed{posts: []*fakePost{
		visiblePost("a", "Alice Smith"),
		visiblePost("b", "Bob Jones"),
		visiblePost("c", "Carol White"),
	}}
	e := newTestEngine(t, profile, feed)

	s := fastSettings()
	s.AutoLike = true
	s.LikeProbability = 100
	s.AutoComment = false
	e.UpdateSettings(s)

	e.cycle(context.Background())

	assert.Equal(t, 1, feed.posts[0].like.clicks, "first post should be liked")
	assert.Equal(t, 0, feed.posts[1].like.clicks, "second post untouched in first cycle")
	assert.True(t, e.isEngaged("a"))
	assert.False(t, e.isEngaged("b"))

	stats := e.Stats()
	assert.Equal(t, 1, stats.PostsViewed)
	assert.Equal(t, 1, stats.PostsLiked)
	assert.Equal(t, 1, stats.SeeMoreClicks)

	e.cycle(context.Background())
	assert.Equal(t, 1, feed.posts[1].like.clicks, "second cycle moves to second post")
	assert.Equal(t, 2, e.Stats().PostsViewed)
}

func TestCycleSkipsOldPostWithoutActions(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	old := visiblePost("stale", "Alice Smith")
	old.info.AgeHours = 96
	old.info.HasAge = true

	feed := &fakeFeed{posts: []*fakePost{old}}
	e := newTestEngine(t, profile, feed)

	s := fastSettings()
	s.AutoLike = true
	s.LikeProbability = 100
	s.TimeFilterEnabled = true
	s.MaxPostAgeHours = 72
	e.UpdateSettings(s)

	e.cycle(context.Background())

	assert.True(t, e.isEngaged("stale"), "skipped post is marked so it is not revisited")
	assert.Equal(t, 0, old.like.clicks)
	assert.Equal(t, 0, old.expand.clicks)
	assert.Equal(t, 0, e.Stats().PostsViewed, "skips do not count as viewed")
}

func TestCyclePromotedPostSkipped(t *testing.T) {
	profile, err := platform.ByName("facebook")
	require.NoError(t, err)

	promoted := visiblePost("ad", "Brand Page")
	promoted.info.Promoted = true

	feed := &fakeFeed{posts: []*fakePost{promoted, visiblePost("organic", "Dana Reed")}}
	e := newTestEngine(t, profile, feed)

	s := fastSettings()
	s.AutoLike = true
	s.LikeProbability = 100
	e.UpdateSettings(s)

	e.cycle(context.Background())
	e.cycle(context.Background())

	assert.Equal(t, 0, promoted.like.clicks)
	assert.Equal(t, 1, feed.posts[1].like.clicks)
	assert.Equal(t, 1, e.Stats().PostsViewed)
}

func TestCycleCommentsAndDeduplicatesAuthor(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	first := visiblePost("p1", "Alice Smith")
	second := visiblePost("p2", "Alice Smith")
	second.info.Content = "entirely different content"

	feed := &fakeFeed{posts: []*fakePost{first, second}}
	e := newTestEngine(t, profile, feed)

	s := fastSettings()
	s.AutoLike = false
	s.AutoComment = true
	s.CommentProbability = 100
	e.UpdateSettings(s)

	e.cycle(context.Background())
	require.Len(t, first.comments, 1)
	assert.Equal(t, "Great point Alice", first.comments[0])

	e.cycle(context.Background())
	assert.Empty(t, second.comments, "same author within the cooldown is not commented twice")
	assert.Equal(t, 1, e.Stats().Comments)
	assert.Equal(t, 2, e.Stats().PostsViewed, "the post is still viewed and expanded")
}

func TestCycleLikeDeniedBySafetyLimits(t *testing.T) {
	profile, err := platform.ByName("twitter")
	require.NoError(t, err)

	post := visiblePost("x1", "Eve Adams")
	feed := &fakeFeed{posts: []*fakePost{post}}
	e := newTestEngine(t, profile, feed)

	for i := 0; i < safety.MaxLikesPerHour; i++ {
		e.safety.RecordLike()
	}

	s := fastSettings()
	s.AutoLike = true
	s.LikeProbability = 100
	e.UpdateSettings(s)

	e.cycle(context.Background())

	assert.Equal(t, 0, post.like.clicks)
	assert.Equal(t, 0, e.Stats().PostsLiked)
	assert.Equal(t, 1, e.Stats().PostsViewed, "post is consumed even when the like is denied")
}

func TestCycleZeroProbabilityNeverActs(t *testing.T) {
	profile, err := platform.ByName("reddit")
	require.NoError(t, err)

	post := visiblePost("r1", "Frank Green")
	feed := &fakeFeed{posts: []*fakePost{post}}
	e := newTestEngine(t, profile, feed)

	s := fastSettings()
	s.ExpandPosts = false
	s.AutoLike = true
	s.LikeProbability = 0
	s.AutoComment = true
	s.CommentProbability = 0
	e.UpdateSettings(s)

	e.cycle(context.Background())

	assert.Equal(t, 0, post.like.clicks)
	assert.Empty(t, post.comments)
	assert.Equal(t, 1, e.Stats().PostsViewed)
}

func TestSmartScrollSurfacesNewPost(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	hidden := visiblePost("below", "Grace Hill")
	hidden.visible = false

	feed := &fakeFeed{posts: []*fakePost{hidden}}
	feed.onScroll = func(f *fakeFeed) {
		if f.scrolls >= 3 {
			hidden.visible = true
		}
	}
	e := newTestEngine(t, profile, feed)

	found, err := e.smartScroll(context.Background(), fastSettings())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, feed.scrolls)
}

func TestSmartScrollAbortsNearBottom(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	feed := &fakeFeed{nearBottom: true}
	e := newTestEngine(t, profile, feed)

	found, err := e.smartScroll(context.Background(), fastSettings())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, feed.scrolls, "no scrolling once the bottom is near")
}

func TestSmartScrollGivesUpAfterBoundedAttempts(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	feed := &fakeFeed{}
	e := newTestEngine(t, profile, feed)

	found, err := e.smartScroll(context.Background(), fastSettings())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, smartScrollAttempts, feed.scrolls)
}

func TestSmartScrollObservesCancellation(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(t, profile, &fakeFeed{})
	_, err = e.smartScroll(ctx, fastSettings())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdateTemplatesRejectsOtherPlatform(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	e := newTestEngine(t, profile, &fakeFeed{})
	assert.False(t, e.UpdateTemplates("twitter", []string{"hi"}))
	assert.True(t, e.UpdateTemplates("linkedin", []string{"hi"}))
}

func TestStartStopLifecycle(t *testing.T) {
	profile, err := platform.ByName("instagram")
	require.NoError(t, err)

	feed := &fakeFeed{nearBottom: true}
	e := newTestEngine(t, profile, feed)
	e.UpdateSettings(fastSettings())

	assert.False(t, e.Running())
	e.Start()
	assert.True(t, e.Running())

	// Second start is a no-op, not a second loop.
	e.Start()

	e.Stop()
	assert.False(t, e.Running())
	// Stop on an idle engine does nothing.
	e.Stop()

	status := e.Status()
	assert.False(t, status.Running)
	assert.Equal(t, "instagram", status.Platform)
}

func TestCycleCommentFailureLeavesStatsUntouched(t *testing.T) {
	profile, err := platform.ByName("linkedin")
	require.NoError(t, err)

	post := visiblePost("broken", "Gina Cole")
	post.commentErr = ErrNoCommentControl

	feed := &fakeFeed{posts: []*fakePost{post}}
	e := newTestEngine(t, profile, feed)

	s := fastSettings()
	s.ExpandPosts = false
	s.AutoLike = false
	s.AutoComment = true
	s.CommentProbability = 100
	e.UpdateSettings(s)

	e.cycle(context.Background())

	assert.Empty(t, post.comments)
	assert.Equal(t, 0, e.Stats().Comments)
	assert.Equal(t, 1, e.Stats().PostsViewed, "the failed action never kills the cycle")
	assert.False(t, e.dedup.HasEngagedAuthor("Gina Cole", 24*time.Hour),
		"nothing is recorded when composition fails")
}
