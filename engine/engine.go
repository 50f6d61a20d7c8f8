// Package engine implements the perpetual engagement cycle: find a post,
// decide whether to skip it, bring its controls into view, and perform
// probabilistic expand/like/comment actions under duplicate and safety
// constraints. One engine instance drives one platform in one tab.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/velvetkeys/engagekit/dedup"
	"github.com/velvetkeys/engagekit/humanize"
	"github.com/velvetkeys/engagekit/platform"
	"github.com/velvetkeys/engagekit/safety"
	"github.com/velvetkeys/engagekit/templates"
)

const (
	smartScrollAttempts = 10
	bottomThresholdPx   = 100
	scrollStepMinPx     = 250
	scrollStepMaxPx     = 600

	noPostSleep    = 7 * time.Second
	cycleGap       = 100 * time.Millisecond
	settleDelay    = time.Second
	authorCooldown = 24 * time.Hour
)

// State is the engine lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

// SessionStats counts what the current session has done. Reset at Start.
type SessionStats struct {
	PostsViewed   int `json:"posts_viewed"`
	SeeMoreClicks int `json:"see_more_clicks"`
	PostsLiked    int `json:"posts_liked"`
	Comments      int `json:"comments"`
}

// Status is the answer to a status query.
type Status struct {
	Running  bool         `json:"running"`
	Platform string       `json:"platform"`
	Stats    SessionStats `json:"stats"`
	Safety   safety.Usage `json:"safety"`
}

// Engine owns the find → filter → engage → wait cycle for one platform.
type Engine struct {
	profile platform.Profile
	feed    Feed

	dedup     *dedup.Detector
	safety    *safety.Limiter
	templates *templates.Generator
	rng       *rand.Rand
	log       *logrus.Entry

	mu       sync.Mutex
	settings Settings
	stats    SessionStats
	state    State
	cancel   context.CancelFunc
	done     chan struct{}

	// Session memory, keyed by Post.Key. Survives Stop/Start within one
	// process the way DOM markers survived in a long-lived tab.
	engaged       map[string]bool
	expandClicked map[string]bool
	likeClicked   map[string]bool
}

// New builds an engine. rng may be nil, in which case a time-seeded source
// is used; tests inject a deterministic one.
func New(profile platform.Profile, feed Feed, det *dedup.Detector, lim *safety.Limiter, gen *templates.Generator, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		profile:       profile,
		feed:          feed,
		dedup:         det,
		safety:        lim,
		templates:     gen,
		rng:           rng,
		log:           logrus.WithField("platform", profile.Name),
		settings:      DefaultSettings(),
		engaged:       make(map[string]bool),
		expandClicked: make(map[string]bool),
		likeClicked:   make(map[string]bool),
	}
}

// Start transitions to Running and schedules the first cycle. No-op when
// already running.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.state == StateRunning {
		e.mu.Unlock()
		e.log.Info("▶️ start ignored: already running")
		return
	}
	e.state = StateRunning
	e.stats = SessionStats{}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	e.log.Info("▶️ engagement started")
	e.feed.Notify("Engagement started")

	go e.run(ctx, done)
}

// Stop cancels the pending cycle and transitions to Idle, emitting a final
// stats summary. An in-flight single action completes before the
// cancellation is observed at its next wait.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	e.state = StateIdle
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done

	stats := e.Stats()
	e.log.Infof("⏹️ engagement stopped — viewed %d, expanded %d, liked %d, commented %d",
		stats.PostsViewed, stats.SeeMoreClicks, stats.PostsLiked, stats.Comments)
	e.feed.Notify(fmt.Sprintf("Stopped: %d viewed, %d liked, %d commented",
		stats.PostsViewed, stats.PostsLiked, stats.Comments))
}

// Running reports whether the engine is in the Running state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateRunning
}

// Status returns the running flag, platform id and session stats.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:  e.state == StateRunning,
		Platform: e.profile.Name,
		Stats:    e.stats,
		Safety:   e.safety.Snapshot(),
	}
}

// Stats returns a copy of the session stats.
func (e *Engine) Stats() SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Settings returns a snapshot of the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings replaces the settings wholesale after normalization.
func (e *Engine) UpdateSettings(s Settings) Settings {
	s.Normalize()
	e.mu.Lock()
	e.settings = s
	e.mu.Unlock()
	e.log.Info("⚙️ settings updated")
	return s
}

// UpdateTemplates replaces the comment templates when the platform name
// matches this engine's platform; otherwise the update is ignored.
func (e *Engine) UpdateTemplates(platformName string, list []string) bool {
	if platformName != e.profile.Name {
		e.log.Warnf("⚠️ template update for %q ignored (engine platform is %q)", platformName, e.profile.Name)
		return false
	}
	e.templates.SetTemplates(list)
	e.log.Infof("📝 templates updated (%d entries)", len(list))
	return true
}

// Platform returns the engine's platform identifier.
func (e *Engine) Platform() string {
	return e.profile.Name
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil {
			return
		}
		e.cycle(ctx)
		if humanize.Sleep(ctx, cycleGap) != nil {
			return
		}
	}
}

// cycle performs one find → filter → engage → wait iteration.
func (e *Engine) cycle(ctx context.Context) {
	settings := e.Settings()

	post := e.findFreshPost()
	if post == nil {
		found, err := e.smartScroll(ctx, settings)
		if err != nil {
			return
		}
		if !found {
			e.log.Debug("💤 no fresh post after smart scroll, idling")
			_ = humanize.Sleep(ctx, noPostSleep)
			return
		}
		if post = e.findFreshPost(); post == nil {
			return
		}
	}

	key := post.Key()

	info, infoErr := post.Info()
	if infoErr != nil {
		e.log.Warnf("⚠️ extraction failed for post %s: %v", key, infoErr)
	} else {
		if skip, reason := e.profile.ShouldSkip(info, settings.Filters()); skip {
			e.markEngaged(key)
			e.log.Infof("⏭️ skipping post %s: %s", key, reason)
			return
		}
	}

	if inView, err := post.ControlsInView(); err == nil && !inView {
		if err := post.CenterControls(ctx); err != nil {
			e.log.Debugf("scroll-to-controls failed: %v", err)
		}
		if humanize.Sleep(ctx, settleDelay) != nil {
			return
		}
	}

	e.markEngaged(key)
	e.mu.Lock()
	e.stats.PostsViewed++
	e.mu.Unlock()

	if settings.ExpandPosts {
		e.expandPost(ctx, post, key, settings)
	}
	if ctx.Err() != nil {
		return
	}

	if settings.AutoLike && e.roll(settings.LikeProbability) {
		e.likePost(ctx, post, key)
		if humanize.Sleep(ctx, msDur(settings.LikeDelayMs)) != nil {
			return
		}
	}

	if settings.AutoComment && e.roll(settings.CommentProbability) {
		e.commentPost(ctx, post)
		if humanize.Sleep(ctx, msDur(settings.CommentDelayMs)) != nil {
			return
		}
	}

	_ = humanize.Sleep(ctx, msDur(settings.PostEngagementDelayMs))
}

// findFreshPost returns the first post in DOM order that intersects the
// viewport and has not been engaged. Front-most wins; no scoring.
func (e *Engine) findFreshPost() Post {
	posts, err := e.feed.Posts()
	if err != nil {
		e.log.Warnf("⚠️ post scan failed: %v", err)
		return nil
	}
	for _, p := range posts {
		if e.isEngaged(p.Key()) {
			continue
		}
		visible, err := p.InViewport()
		if err != nil || !visible {
			continue
		}
		return p
	}
	return nil
}

// smartScroll tries to surface a new unengaged post: bounded attempts, each
// one step of random magnitude followed by a settle wait and a re-scan.
// Aborts early when the page bottom is near.
func (e *Engine) smartScroll(ctx context.Context, settings Settings) (bool, error) {
	for attempt := 1; attempt <= smartScrollAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		nearBottom, err := e.feed.NearBottom(bottomThresholdPx)
		if err != nil {
			e.log.Debugf("bottom check failed: %v", err)
		} else if nearBottom {
			e.log.Debug("📜 page bottom reached")
			return false, nil
		}

		amount := scrollStepMinPx + e.rng.Intn(scrollStepMaxPx-scrollStepMinPx+1)
		viaKeyboard := e.rng.Intn(2) == 0
		if err := e.feed.ScrollStep(ctx, amount, viaKeyboard); err != nil {
			e.log.Debugf("scroll step failed: %v", err)
		}

		if err := humanize.SleepMillis(ctx, settings.ScrollSpeedMin, settings.ScrollSpeedMax); err != nil {
			return false, err
		}

		if e.findFreshPost() != nil {
			return true, nil
		}
	}
	return false, nil
}

// expandPost clicks an unclicked see-more control inside the post, if any.
func (e *Engine) expandPost(ctx context.Context, post Post, key string, settings Settings) {
	e.mu.Lock()
	clicked := e.expandClicked[key]
	e.mu.Unlock()
	if clicked {
		return
	}

	c, err := post.FindExpand()
	if err != nil {
		if !errors.Is(err, ErrNoExpandControl) {
			e.log.Debugf("expand lookup failed: %v", err)
		}
		return
	}

	e.mu.Lock()
	e.expandClicked[key] = true
	e.mu.Unlock()

	if err := c.Click(ctx); err != nil {
		e.log.Warnf("⚠️ expand click failed: %v", err)
		return
	}

	e.mu.Lock()
	e.stats.SeeMoreClicks++
	e.mu.Unlock()
	e.log.Debugf("📖 expanded post %s", key)

	_ = humanize.Sleep(ctx, msDur(settings.SeeMoreDelayMs))
}

// likePost attempts a like: control discovery, duplicate-click and pressed
// checks, safety gate, then a human click.
func (e *Engine) likePost(ctx context.Context, post Post, key string) {
	c, err := post.FindLike()
	if err != nil {
		e.log.Debugf("like skipped: %v", err)
		return
	}

	e.mu.Lock()
	clicked := e.likeClicked[key]
	e.mu.Unlock()
	if clicked {
		return
	}

	if !e.safety.CanLike() {
		e.log.Info("🛑 like denied by safety limits")
		return
	}

	e.mu.Lock()
	e.likeClicked[key] = true
	e.mu.Unlock()

	if humanize.SleepMillis(ctx, 200, 600) != nil {
		return
	}
	if err := c.Click(ctx); err != nil {
		e.log.Warnf("⚠️ like click failed: %v", err)
		return
	}

	e.mu.Lock()
	e.stats.PostsLiked++
	e.mu.Unlock()
	e.safety.RecordLike()
	e.log.Infof("👍 liked post %s", key)
}

// commentPost attempts a comment: safety gate, extraction, duplicate gates,
// then the composition sequence. Extraction failure degrades to commenting
// without duplicate checks on platforms configured that way.
func (e *Engine) commentPost(ctx context.Context, post Post) {
	if !e.safety.CanComment() {
		e.log.Info("🛑 comment denied by safety limits")
		return
	}

	info, err := post.Info()
	runDupChecks := err == nil || e.profile.StrictDuplicateChecks
	if err != nil {
		if runDupChecks {
			e.log.Warnf("⚠️ extraction failed, running duplicate checks on partial identifiers: %v", err)
		} else {
			e.log.Warnf("⚠️ extraction failed, duplicate checks skipped: %v", err)
		}
	}

	if runDupChecks {
		if e.dedup.HasEngagedURL(info.URL) {
			e.log.Info("⏭️ comment skipped: URL already engaged")
			return
		}
		if e.dedup.HasEngagedAuthor(info.Author, authorCooldown) {
			e.log.Infof("⏭️ comment skipped: author %q engaged within 24h", info.Author)
			return
		}
		if e.dedup.HasEngagedContent(info.Content) {
			e.log.Info("⏭️ comment skipped: content already seen")
			return
		}
	}

	text := e.templates.Generate(templates.Context{AuthorName: info.Author})
	if text == "" {
		e.log.Warn("⚠️ empty comment generated, skipping")
		return
	}

	if err := post.Comment(ctx, text); err != nil {
		e.log.Warnf("⚠️ comment failed: %v", err)
		return
	}

	e.mu.Lock()
	e.stats.Comments++
	e.mu.Unlock()
	e.safety.RecordComment()
	e.dedup.RecordEngagement(info.URL, info.Author, info.Content)
	e.log.Infof("💬 commented on post by %q", info.Author)
}

func (e *Engine) roll(probability int) bool {
	return e.rng.Intn(100) < probability
}

func (e *Engine) isEngaged(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engaged[key]
}

func (e *Engine) markEngaged(key string) {
	e.mu.Lock()
	e.engaged[key] = true
	e.mu.Unlock()
}

func msDur(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
