package dedup

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetkeys/engagekit/persistence"
)

func newTestStore(t *testing.T) *persistence.Store {
	t.Helper()
	store, err := persistence.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSimpleHash(t *testing.T) {
	// Deterministic.
	assert.Equal(t, SimpleHash("Great post!"), SimpleHash("Great post!"))

	// Case and whitespace-run insensitive.
	assert.Equal(t, SimpleHash("Great post!"), SimpleHash("great   post!"))
	assert.Equal(t, SimpleHash("Great post!"), SimpleHash("  GREAT\n\npost!  "))

	// Different content, different hash.
	assert.NotEqual(t, SimpleHash("Great post!"), SimpleHash("Terrible post!"))

	// Truncation: text identical in the first 500 normalized chars hashes
	// the same.
	long := ""
	for i := 0; i < 60; i++ {
		long += "0123456789"
	}
	assert.Equal(t, SimpleHash(long+"tail one"), SimpleHash(long+"tail two"))
}

func TestRecordAndCheck(t *testing.T) {
	store := newTestStore(t)
	d := NewDetector(store)

	assert.False(t, d.HasEngagedURL("https://example.com/p/1"))
	assert.False(t, d.HasEngagedAuthor("Jane Doe", 24*time.Hour))
	assert.False(t, d.HasEngagedContent("hello world"))

	d.RecordEngagement("https://example.com/p/1", "Jane Doe", "hello world")

	assert.True(t, d.HasEngagedURL("https://example.com/p/1"))
	assert.True(t, d.HasEngagedAuthor("Jane Doe", 24*time.Hour))
	assert.True(t, d.HasEngagedContent("hello world"))
	assert.True(t, d.HasEngagedContent("Hello   WORLD"))

	// Empty identifiers never match.
	assert.False(t, d.HasEngagedURL(""))
	assert.False(t, d.HasEngagedAuthor("", 24*time.Hour))
	assert.False(t, d.HasEngagedContent(""))
}

func TestAuthorCooldownWindow(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	d := newDetector(store, func() time.Time { return now })

	d.RecordEngagement("", "Jane Doe", "")
	assert.True(t, d.HasEngagedAuthor("Jane Doe", 24*time.Hour))

	// 25 hours later the 24h window has lapsed.
	now = now.Add(25 * time.Hour)
	assert.False(t, d.HasEngagedAuthor("Jane Doe", 24*time.Hour))

	// A wider window still matches.
	assert.True(t, d.HasEngagedAuthor("Jane Doe", 48*time.Hour))
}

func TestPersistenceAcrossLoads(t *testing.T) {
	store := newTestStore(t)

	d := NewDetector(store)
	d.RecordEngagement("https://example.com/p/9", "Sam Smith", "some content here")

	// A fresh detector over the same store sees the records.
	d2 := NewDetector(store)
	assert.True(t, d2.HasEngagedURL("https://example.com/p/9"))
	assert.True(t, d2.HasEngagedAuthor("Sam Smith", 24*time.Hour))
	assert.True(t, d2.HasEngagedContent("some content here"))
}

func TestCleanupDropsStaleAuthors(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	d := newDetector(store, func() time.Time { return now })

	d.RecordEngagement("", "Old Author", "")
	now = now.Add(8 * 24 * time.Hour)
	d.RecordEngagement("", "Fresh Author", "")

	d.Cleanup()

	assert.False(t, d.HasEngagedAuthor("Old Author", 30*24*time.Hour))
	assert.True(t, d.HasEngagedAuthor("Fresh Author", 24*time.Hour))
}

func TestCleanupCapsURLSet(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Add(-30 * 24 * time.Hour)
	for i := 0; i < maxSetSize+1; i++ {
		require.NoError(t, store.AddEngagedURL(
			fmt.Sprintf("https://example.com/p/%d", i),
			base.Add(time.Duration(i)*time.Second)))
	}
	require.NoError(t, store.SetLastCleanup(base.Add(-8*24*time.Hour)))

	// Loading triggers cleanup because lastCleanup is more than 7 days old.
	d := NewDetector(store)

	urls, err := store.LoadEngagedURLs()
	require.NoError(t, err)
	assert.Len(t, urls, keepSetSize)

	// The most recently added survive, the oldest are gone.
	assert.True(t, d.HasEngagedURL(fmt.Sprintf("https://example.com/p/%d", maxSetSize)))
	assert.False(t, d.HasEngagedURL("https://example.com/p/0"))
}

func TestRecentCleanupNotRetriggered(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEngagedURL("https://example.com/p/1", time.Now()))
	require.NoError(t, store.SetLastCleanup(time.Now().Add(-time.Hour)))

	d := NewDetector(store)
	assert.True(t, d.HasEngagedURL("https://example.com/p/1"))

	urls, err := store.LoadEngagedURLs()
	require.NoError(t, err)
	assert.Len(t, urls, 1)
}

func TestConcurrentRecordAndCleanup(t *testing.T) {
	store := newTestStore(t)
	d := NewDetector(store)

	// The cycle goroutine, the scheduled cleanup and the control-API
	// diagnostics all hit one detector at once.
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			d.RecordEngagement(
				fmt.Sprintf("https://example.com/p/%d", i),
				fmt.Sprintf("Author %d", i%20),
				fmt.Sprintf("content number %d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			d.Cleanup()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			d.HasEngagedURL(fmt.Sprintf("https://example.com/p/%d", i))
			d.HasEngagedAuthor(fmt.Sprintf("Author %d", i%20), 24*time.Hour)
			d.HasEngagedContent(fmt.Sprintf("content number %d", i))
		}
	}()

	wg.Wait()
	assert.True(t, d.HasEngagedURL("https://example.com/p/0"))
}
