package persistence

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEngagedURLRoundTrip(t *testing.T) {
	store := newTestStore(t)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddEngagedURL("https://example.com/p/1", at))
	require.NoError(t, store.AddEngagedURL("https://example.com/p/2", at.Add(time.Hour)))

	urls, err := store.LoadEngagedURLs()
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.True(t, urls["https://example.com/p/1"].Equal(at))
}

func TestTrimKeepsMostRecent(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, store.AddEngagedURL(
			fmt.Sprintf("https://example.com/p/%d", i),
			base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, store.TrimEngagedURLs(3))

	urls, err := store.LoadEngagedURLs()
	require.NoError(t, err)
	require.Len(t, urls, 3)
	for _, at := range urls {
		assert.False(t, at.Before(base.Add(7*time.Minute)), "only the newest survive the trim")
	}
}

func TestAuthorCutoffDelete(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddEngagedAuthor("Old Author", now.Add(-8*24*time.Hour)))
	require.NoError(t, store.AddEngagedAuthor("Fresh Author", now.Add(-time.Hour)))

	require.NoError(t, store.DeleteAuthorsBefore(now.Add(-7*24*time.Hour)))

	authors, err := store.LoadEngagedAuthors()
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Contains(t, authors, "Fresh Author")
}

func TestCountersRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.LoadCounters("like")
	require.NoError(t, err)
	assert.False(t, found)

	in := Counters{
		HourCount: 4,
		DayCount:  17,
		HourStart: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		DayStart:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveCounters("like", in))

	out, found, err := store.LoadCounters("like")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in.HourCount, out.HourCount)
	assert.Equal(t, in.DayCount, out.DayCount)
	assert.True(t, out.HourStart.Equal(in.HourStart))
	assert.True(t, out.DayStart.Equal(in.DayStart))
}

func TestTemplatesRoundTrip(t *testing.T) {
	store := newTestStore(t)

	missing, err := store.LoadTemplates("linkedin")
	require.NoError(t, err)
	assert.Nil(t, missing)

	in := []string{"Great insight {author_first}!", "Thanks for sharing{comma} very useful."}
	require.NoError(t, store.SaveTemplates("linkedin", in))

	out, err := store.LoadTemplates("linkedin")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Saving again replaces, not appends.
	require.NoError(t, store.SaveTemplates("linkedin", []string{"only one"}))
	out, err = store.LoadTemplates("linkedin")
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, out)
}

func TestSettingsBlob(t *testing.T) {
	store := newTestStore(t)

	blob, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Nil(t, blob)

	require.NoError(t, store.SaveSettings(json.RawMessage(`{"auto_like":true}`)))
	blob, err = store.LoadSettings()
	require.NoError(t, err)
	assert.JSONEq(t, `{"auto_like":true}`, string(blob))
}

func TestLastCleanupTimestamp(t *testing.T) {
	store := newTestStore(t)

	at, err := store.LastCleanup()
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	stamp := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetLastCleanup(stamp))

	at, err = store.LastCleanup()
	require.NoError(t, err)
	assert.True(t, at.Equal(stamp))
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.AddEngagedURL("https://example.com/p/keep", time.Now()))
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	urls, err := store.LoadEngagedURLs()
	require.NoError(t, err)
	assert.Contains(t, urls, "https://example.com/p/keep")
}
