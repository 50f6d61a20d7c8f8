// Package persistence provides SQLite-backed state for the engagement bot:
// duplicate-detection sets, safety counters, comment templates, settings and
// housekeeping timestamps. Reads are best-effort; callers fall back to
// defaults when a key is absent.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultDBPath = "engagekit.db"

// Store handles all persistence operations using SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (or creates) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps the fire-and-forget writes from blocking the cycle.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS engaged_urls (
			url TEXT PRIMARY KEY,
			recorded_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS engaged_authors (
			author TEXT PRIMARY KEY,
			last_engaged_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS content_hashes (
			hash TEXT PRIMARY KEY,
			recorded_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS safety_counters (
			action TEXT PRIMARY KEY,
			hour_count INTEGER NOT NULL DEFAULT 0,
			day_count INTEGER NOT NULL DEFAULT 0,
			hour_start DATETIME NOT NULL,
			day_start DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS comment_templates (
			platform TEXT PRIMARY KEY,
			templates TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			blob TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_engaged_urls_recorded ON engaged_urls(recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_content_hashes_recorded ON content_hashes(recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_engaged_authors_last ON engaged_authors(last_engaged_at)`,
	}

	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// === Duplicate-detection sets ===

// AddEngagedURL records an engaged post URL.
func (s *Store) AddEngagedURL(url string, at time.Time) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO engaged_urls (url, recorded_at) VALUES (?, ?)`, url, at.UTC())
	return err
}

// LoadEngagedURLs returns all engaged URLs with their record times.
func (s *Store) LoadEngagedURLs() (map[string]time.Time, error) {
	return s.loadTimedSet(`SELECT url, recorded_at FROM engaged_urls`)
}

// TrimEngagedURLs keeps only the `keep` most recently recorded URLs.
func (s *Store) TrimEngagedURLs(keep int) error {
	_, err := s.db.Exec(`DELETE FROM engaged_urls WHERE url NOT IN (
		SELECT url FROM engaged_urls ORDER BY recorded_at DESC LIMIT ?)`, keep)
	return err
}

// AddEngagedAuthor records (or refreshes) an engaged author.
func (s *Store) AddEngagedAuthor(author string, at time.Time) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO engaged_authors (author, last_engaged_at) VALUES (?, ?)`, author, at.UTC())
	return err
}

// LoadEngagedAuthors returns all engaged authors with last-engagement times.
func (s *Store) LoadEngagedAuthors() (map[string]time.Time, error) {
	return s.loadTimedSet(`SELECT author, last_engaged_at FROM engaged_authors`)
}

// DeleteAuthorsBefore drops author records older than the cutoff.
func (s *Store) DeleteAuthorsBefore(cutoff time.Time) error {
	_, err := s.db.Exec(`DELETE FROM engaged_authors WHERE last_engaged_at < ?`, cutoff.UTC())
	return err
}

// AddContentHash records a content hash.
func (s *Store) AddContentHash(hash string, at time.Time) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO content_hashes (hash, recorded_at) VALUES (?, ?)`, hash, at.UTC())
	return err
}

// LoadContentHashes returns all content hashes with their record times.
func (s *Store) LoadContentHashes() (map[string]time.Time, error) {
	return s.loadTimedSet(`SELECT hash, recorded_at FROM content_hashes`)
}

// TrimContentHashes keeps only the `keep` most recently recorded hashes.
func (s *Store) TrimContentHashes(keep int) error {
	_, err := s.db.Exec(`DELETE FROM content_hashes WHERE hash NOT IN (
		SELECT hash FROM content_hashes ORDER BY recorded_at DESC LIMIT ?)`, keep)
	return err
}

func (s *Store) loadTimedSet(query string) (map[string]time.Time, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var key string
		var at time.Time
		if err := rows.Scan(&key, &at); err != nil {
			return nil, err
		}
		out[key] = at
	}
	return out, rows.Err()
}

// === Safety counters ===

// Counters is one action type's windowed counts.
type Counters struct {
	HourCount int
	DayCount  int
	HourStart time.Time
	DayStart  time.Time
}

// LoadCounters reads the persisted counters for an action type. The second
// return value is false when nothing has been persisted yet.
func (s *Store) LoadCounters(action string) (Counters, bool, error) {
	var c Counters
	row := s.db.QueryRow(`SELECT hour_count, day_count, hour_start, day_start FROM safety_counters WHERE action = ?`, action)
	err := row.Scan(&c.HourCount, &c.DayCount, &c.HourStart, &c.DayStart)
	if err == sql.ErrNoRows {
		return c, false, nil
	}
	if err != nil {
		return c, false, err
	}
	return c, true, nil
}

// SaveCounters persists the counters for an action type.
func (s *Store) SaveCounters(action string, c Counters) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO safety_counters
		(action, hour_count, day_count, hour_start, day_start) VALUES (?, ?, ?, ?, ?)`,
		action, c.HourCount, c.DayCount, c.HourStart.UTC(), c.DayStart.UTC())
	return err
}

// === Comment templates ===

// SaveTemplates replaces the template list for a platform.
func (s *Store) SaveTemplates(platform string, templates []string) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO comment_templates (platform, templates) VALUES (?, ?)`, platform, string(data))
	return err
}

// LoadTemplates returns the stored template list for a platform, or nil when
// none has been saved.
func (s *Store) LoadTemplates(platform string) ([]string, error) {
	var data string
	row := s.db.QueryRow(`SELECT templates FROM comment_templates WHERE platform = ?`, platform)
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var templates []string
	if err := json.Unmarshal([]byte(data), &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// === Settings blob ===

// SaveSettings persists the settings blob wholesale.
func (s *Store) SaveSettings(blob json.RawMessage) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (id, blob) VALUES (1, ?)`, string(blob))
	return err
}

// LoadSettings returns the persisted settings blob, or nil when absent.
func (s *Store) LoadSettings() (json.RawMessage, error) {
	var blob string
	row := s.db.QueryRow(`SELECT blob FROM settings WHERE id = 1`)
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(blob), nil
}

// === Meta ===

const metaLastCleanup = "last_cleanup"

// LastCleanup returns the recorded time of the last duplicate-set cleanup.
// The zero time is returned when no cleanup has ever run.
func (s *Store) LastCleanup() (time.Time, error) {
	var value string
	row := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaLastCleanup)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// SetLastCleanup records when the duplicate-set cleanup last ran.
func (s *Store) SetLastCleanup(at time.Time) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		metaLastCleanup, at.UTC().Format(time.RFC3339))
	return err
}
