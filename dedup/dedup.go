// Package dedup prevents repeat engagement. Three independent stores back
// the checks: engaged post URLs, engaged authors with a cooldown window, and
// cheap content hashes. All three are held in memory and written through to
// the persistence store on every mutation.
package dedup

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/velvetkeys/engagekit/persistence"
)

const (
	// AuthorRetention is how long author records survive cleanup.
	AuthorRetention = 7 * 24 * time.Hour
	// CleanupInterval is how often cleanup runs.
	CleanupInterval = 7 * 24 * time.Hour
	// maxSetSize triggers trimming of the URL and hash sets.
	maxSetSize = 10000
	// keepSetSize is what trimming retains (most recent first).
	keepSetSize = 5000
)

// Detector answers "have we engaged with this before?". Safe for concurrent
// use: the engine cycle, the cron cleanup and the control-API diagnostics
// all share one instance.
type Detector struct {
	mu      sync.Mutex
	urls    map[string]time.Time
	authors map[string]time.Time
	hashes  map[string]time.Time

	store *persistence.Store
	now   func() time.Time
	log   *logrus.Entry
}

// NewDetector loads the persisted sets and runs cleanup if it is overdue.
// Load failures are logged and leave the detector running on empty in-memory
// sets.
func NewDetector(store *persistence.Store) *Detector {
	return newDetector(store, time.Now)
}

func newDetector(store *persistence.Store, now func() time.Time) *Detector {
	d := &Detector{
		urls:    make(map[string]time.Time),
		authors: make(map[string]time.Time),
		hashes:  make(map[string]time.Time),
		store:   store,
		now:     now,
		log:     logrus.WithField("component", "dedup"),
	}

	if urls, err := store.LoadEngagedURLs(); err != nil {
		d.log.Warnf("⚠️ failed to load engaged URLs: %v", err)
	} else {
		d.urls = urls
	}
	if authors, err := store.LoadEngagedAuthors(); err != nil {
		d.log.Warnf("⚠️ failed to load engaged authors: %v", err)
	} else {
		d.authors = authors
	}
	if hashes, err := store.LoadContentHashes(); err != nil {
		d.log.Warnf("⚠️ failed to load content hashes: %v", err)
	} else {
		d.hashes = hashes
	}

	last, err := store.LastCleanup()
	if err != nil {
		d.log.Warnf("⚠️ failed to read last cleanup time: %v", err)
	}
	if d.now().Sub(last) > CleanupInterval {
		d.Cleanup()
	}

	return d
}

// HasEngagedURL reports whether this post URL was engaged before.
func (d *Detector) HasEngagedURL(url string) bool {
	if url == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.urls[url]
	return ok
}

// HasEngagedAuthor reports whether this author was engaged within the window.
func (d *Detector) HasEngagedAuthor(author string, window time.Duration) bool {
	if author == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.authors[author]
	if !ok {
		return false
	}
	return d.now().Sub(last) <= window
}

// HasEngagedContent reports whether equivalent content was engaged before.
// Equivalence is the SimpleHash of the normalized text, so case and
// whitespace differences do not defeat it.
func (d *Detector) HasEngagedContent(text string) bool {
	if text == "" {
		return false
	}
	h := SimpleHash(text)
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.hashes[h]
	return ok
}

// RecordEngagement adds the identifiers of a successful engagement to all
// three stores. Empty identifiers are ignored; re-recording is harmless.
// Persistence failures are logged and do not affect the in-memory state.
func (d *Detector) RecordEngagement(url, author, text string) {
	at := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if url != "" {
		d.urls[url] = at
		if err := d.store.AddEngagedURL(url, at); err != nil {
			d.log.Warnf("⚠️ failed to persist engaged URL: %v", err)
		}
	}
	if author != "" {
		d.authors[author] = at
		if err := d.store.AddEngagedAuthor(author, at); err != nil {
			d.log.Warnf("⚠️ failed to persist engaged author: %v", err)
		}
	}
	if text != "" {
		h := SimpleHash(text)
		d.hashes[h] = at
		if err := d.store.AddContentHash(h, at); err != nil {
			d.log.Warnf("⚠️ failed to persist content hash: %v", err)
		}
	}
}

// Cleanup drops stale author records and caps the URL and hash sets. Ran at
// load time when overdue and weekly from the cron schedule.
func (d *Detector) Cleanup() {
	now := d.now()
	cutoff := now.Add(-AuthorRetention)

	d.mu.Lock()
	defer d.mu.Unlock()

	dropped := 0
	for author, last := range d.authors {
		if last.Before(cutoff) {
			delete(d.authors, author)
			dropped++
		}
	}
	if err := d.store.DeleteAuthorsBefore(cutoff); err != nil {
		d.log.Warnf("⚠️ failed to prune authors: %v", err)
	}

	trimmedURLs := d.trim(d.urls, func(keep int) error { return d.store.TrimEngagedURLs(keep) })
	trimmedHashes := d.trim(d.hashes, func(keep int) error { return d.store.TrimContentHashes(keep) })

	if err := d.store.SetLastCleanup(now); err != nil {
		d.log.Warnf("⚠️ failed to record cleanup time: %v", err)
	}

	d.log.Infof("🧹 cleanup done: %d authors dropped, %d URLs trimmed, %d hashes trimmed",
		dropped, trimmedURLs, trimmedHashes)
}

// trim caps a set at maxSetSize, keeping the keepSetSize most recent entries.
func (d *Detector) trim(set map[string]time.Time, persist func(keep int) error) int {
	if len(set) <= maxSetSize {
		return 0
	}

	// Find the cutoff: the keepSetSize-th most recent timestamp.
	times := make([]time.Time, 0, len(set))
	for _, at := range set {
		times = append(times, at)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	cutoff := times[keepSetSize-1]

	trimmed := 0
	for key, at := range set {
		if at.Before(cutoff) {
			delete(set, key)
			trimmed++
		}
	}
	// Entries sharing the cutoff timestamp may push the set slightly above
	// keepSetSize; the store-side trim is exact.
	if err := persist(keepSetSize); err != nil {
		d.log.Warnf("⚠️ failed to trim persisted set: %v", err)
	}
	return trimmed
}
