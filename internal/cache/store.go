package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const dbFileName = "fetch_cache.db"

// Entry is a cached fetch result.
type Entry struct {
	URL         string
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Stats summarizes cache contents for the CLI.
type Stats struct {
	Entries    int64
	TotalBytes int64
	Oldest     time.Time
	Newest     time.Time
}

// Store manages fetch cache persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the cache database in dir and applies the
// schema. The directory lock is held until Close; a second process opening the
// same cache fails fast instead of corrupting it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "cache.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("cache directory %s is in use by another guidepress process", dir)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the directory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
		s.db = nil
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); dbErr == nil {
			dbErr = unlockErr
		}
		s.lock = nil
	}
	return dbErr
}

// Path returns the filesystem path of the cache database.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached entry for url when present and newer than maxAge.
// Stale entries are treated as absent.
func (s *Store) Get(ctx context.Context, url string, maxAge time.Duration) (*Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT content_type, body, fetched_at FROM fetch_entries WHERE url = ?", url)

	var entry Entry
	var fetchedAt string
	if err := row.Scan(&entry.ContentType, &entry.Body, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, false, fmt.Errorf("parse cache timestamp: %w", err)
	}
	if maxAge > 0 && time.Since(parsed) > maxAge {
		return nil, false, nil
	}

	entry.URL = url
	entry.FetchedAt = parsed
	return &entry, true, nil
}

// Put stores or replaces the cached entry for url.
func (s *Store) Put(ctx context.Context, url, contentType string, body []byte) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_entries (url, content_type, body, fetched_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET
             content_type = excluded.content_type,
             body = excluded.body,
             fetched_at = excluded.fetched_at`,
		url, contentType, body, timestamp)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Stats reports entry count, total body size, and the entry age range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(LENGTH(body)), 0), COALESCE(MIN(fetched_at), ''), COALESCE(MAX(fetched_at), '') FROM fetch_entries")

	var stats Stats
	var oldest, newest string
	if err := row.Scan(&stats.Entries, &stats.TotalBytes, &oldest, &newest); err != nil {
		return Stats{}, fmt.Errorf("read cache stats: %w", err)
	}
	if oldest != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, oldest); err == nil {
			stats.Oldest = parsed
		}
	}
	if newest != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, newest); err == nil {
			stats.Newest = parsed
		}
	}
	return stats, nil
}

// Clear removes every cached entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM fetch_entries")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// Reset deletes the cache database files outright. Used when the schema
// cannot be opened, which Clear requires.
func Reset(dir string) error {
	for _, name := range []string{dbFileName, dbFileName + "-wal", dbFileName + "-shm"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
