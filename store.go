package spacetraveling

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/spacetraveling/content"
)

// ErrNotFound is returned when a requested snapshot does not exist.
var ErrNotFound = sql.ErrNoRows

// Snapshot is a post fetched ahead of time and served without a round trip
// to the content API.
type Snapshot struct {
	Slug      string
	Post      content.PostDetail
	FetchedAt time.Time
}

// Store wraps a SQLite database of post snapshots.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the prebuild writer run next to request readers; writers wait
	// on the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    document TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
`)
	return err
}

// SaveSnapshot upserts the snapshot of a post.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	doc, err := json.Marshal(snap.Post)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", snap.Slug, err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO snapshots (slug, title, document, fetched_at) VALUES (?, ?, ?, ?)`,
		snap.Slug, snap.Post.Title, string(doc), snap.FetchedAt.UTC().Format(time.RFC3339))
	return err
}

// GetSnapshot returns the snapshot for slug, or ErrNotFound.
func (s *Store) GetSnapshot(slug string) (Snapshot, error) {
	var doc, fetchedAt string
	err := s.db.QueryRow(`SELECT document, fetched_at FROM snapshots WHERE slug = ?`, slug).Scan(&doc, &fetchedAt)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Slug: slug}
	if err := json.Unmarshal([]byte(doc), &snap.Post); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %q: %w", slug, err)
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		snap.FetchedAt = t
	}
	return snap, nil
}

// ListSlugs returns the slugs of all stored snapshots, sorted.
func (s *Store) ListSlugs() ([]string, error) {
	rows, err := s.db.Query(`SELECT slug FROM snapshots ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// DeleteSnapshot removes the snapshot for slug.
func (s *Store) DeleteSnapshot(slug string) error {
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE slug = ?`, slug)
	return err
}

// DeleteAll removes every snapshot and returns how many were removed.
func (s *Store) DeleteAll() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
