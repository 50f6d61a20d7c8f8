// Package safety enforces hard caps on engagement volume. Counters are
// windowed (hourly and daily), auto-reset when their window elapses, and
// persisted after every increment so restarts cannot evade the caps.
package safety

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/velvetkeys/engagekit/persistence"
)

// Fixed caps. Deliberately not configurable: these are the guardrails.
const (
	MaxCommentsPerHour = 10
	MaxCommentsPerDay  = 50
	MaxLikesPerHour    = 30
	MaxLikesPerDay     = 200
)

const (
	actionLike    = "like"
	actionComment = "comment"
)

// Limiter tracks like and comment volume against the caps.
type Limiter struct {
	mu sync.Mutex

	likes    persistence.Counters
	comments persistence.Counters

	store *persistence.Store
	now   func() time.Time
	log   *logrus.Entry
}

// NewLimiter loads persisted counters; missing or unreadable state starts
// fresh windows at the current time.
func NewLimiter(store *persistence.Store) *Limiter {
	return newLimiter(store, time.Now)
}

func newLimiter(store *persistence.Store, now func() time.Time) *Limiter {
	l := &Limiter{
		store: store,
		now:   now,
		log:   logrus.WithField("component", "safety"),
	}

	l.likes = l.loadCounters(actionLike)
	l.comments = l.loadCounters(actionComment)
	return l
}

func (l *Limiter) loadCounters(action string) persistence.Counters {
	c, ok, err := l.store.LoadCounters(action)
	if err != nil {
		l.log.Warnf("⚠️ failed to load %s counters: %v", action, err)
	}
	if !ok || err != nil {
		t := l.now()
		return persistence.Counters{HourStart: t, DayStart: t}
	}
	return c
}

// CanLike reports whether another like is allowed right now.
func (l *Limiter) CanLike() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcile(&l.likes, actionLike)
	return l.likes.HourCount < MaxLikesPerHour && l.likes.DayCount < MaxLikesPerDay
}

// CanComment reports whether another comment is allowed right now.
func (l *Limiter) CanComment() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcile(&l.comments, actionComment)
	return l.comments.HourCount < MaxCommentsPerHour && l.comments.DayCount < MaxCommentsPerDay
}

// RecordLike counts one like against both windows and persists.
func (l *Limiter) RecordLike() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcile(&l.likes, actionLike)
	l.likes.HourCount++
	l.likes.DayCount++
	l.persist(actionLike, l.likes)
}

// RecordComment counts one comment against both windows and persists.
func (l *Limiter) RecordComment() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcile(&l.comments, actionComment)
	l.comments.HourCount++
	l.comments.DayCount++
	l.persist(actionComment, l.comments)
}

// Usage is a snapshot of the current counts, for status reporting.
type Usage struct {
	LikesThisHour    int `json:"likes_this_hour"`
	LikesToday       int `json:"likes_today"`
	CommentsThisHour int `json:"comments_this_hour"`
	CommentsToday    int `json:"comments_today"`
}

// Snapshot returns the reconciled counts.
func (l *Limiter) Snapshot() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcile(&l.likes, actionLike)
	l.reconcile(&l.comments, actionComment)
	return Usage{
		LikesThisHour:    l.likes.HourCount,
		LikesToday:       l.likes.DayCount,
		CommentsThisHour: l.comments.HourCount,
		CommentsToday:    l.comments.DayCount,
	}
}

// reconcile resets any window whose span has elapsed, advancing its start to
// now. Callers hold the mutex.
func (l *Limiter) reconcile(c *persistence.Counters, action string) {
	now := l.now()
	changed := false

	if now.Sub(c.HourStart) >= time.Hour {
		c.HourCount = 0
		c.HourStart = now
		changed = true
	}
	if now.Sub(c.DayStart) >= 24*time.Hour {
		c.DayCount = 0
		c.DayStart = now
		changed = true
	}
	if changed {
		l.persist(action, *c)
	}
}

func (l *Limiter) persist(action string, c persistence.Counters) {
	if err := l.store.SaveCounters(action, c); err != nil {
		l.log.Warnf("⚠️ failed to persist %s counters: %v", action, err)
	}
}
