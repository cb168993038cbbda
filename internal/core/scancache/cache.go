// Package scancache persists per-file scan cursors so the watch loop can
// tell which logs actually changed without re-hashing everything. It
// never stores ordering; the timeline is always rebuilt in memory.
package scancache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cursor is the last-seen state of one log file. LastUUID is the
// resumable cursor for tailing: lines at or before it are already
// indexed and re-reading them is a no-op.
type Cursor struct {
	Path     string
	SHA256   string
	Size     int64
	Mtime    time.Time
	LastLine int
	LastUUID string
}

// Cache wraps a SQLite database holding scan cursors
type Cache struct {
	conn *sql.DB
}

// Open creates (or opens) the cache database and initializes its schema
func Open(dbPath string) (*Cache, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// WAL mode for concurrent reads
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite only supports one writer
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	c := &Cache{conn: conn}
	if err := c.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return c, nil
}

func (c *Cache) initSchema() error {
	_, err := c.conn.Exec(`
		CREATE TABLE IF NOT EXISTS scan_cursors (
			path TEXT PRIMARY KEY,
			sha256 TEXT NOT NULL,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			last_line INTEGER NOT NULL DEFAULT 0,
			last_uuid TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Close closes the cache database
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Lookup returns the stored cursor for a path
func (c *Cache) Lookup(path string) (*Cursor, bool, error) {
	row := c.conn.QueryRow(`
		SELECT path, sha256, size, mtime, last_line, last_uuid
		FROM scan_cursors WHERE path = ?
	`, path)

	var cur Cursor
	var mtime int64
	err := row.Scan(&cur.Path, &cur.SHA256, &cur.Size, &mtime, &cur.LastLine, &cur.LastUUID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cursor: %w", err)
	}
	cur.Mtime = time.Unix(0, mtime)
	return &cur, true, nil
}

// Store inserts or replaces the cursor for a path
func (c *Cache) Store(cur *Cursor) error {
	_, err := c.conn.Exec(`
		INSERT INTO scan_cursors (path, sha256, size, mtime, last_line, last_uuid, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			sha256 = excluded.sha256,
			size = excluded.size,
			mtime = excluded.mtime,
			last_line = excluded.last_line,
			last_uuid = excluded.last_uuid,
			updated_at = CURRENT_TIMESTAMP
	`, cur.Path, cur.SHA256, cur.Size, cur.Mtime.UnixNano(), cur.LastLine, cur.LastUUID)
	if err != nil {
		return fmt.Errorf("failed to store cursor: %w", err)
	}
	return nil
}

// Changed reports whether a file moved past its stored cursor. Unknown
// files are always changed. Size and mtime decide cheaply; the hash
// settles files that were touched but not grown.
func (c *Cache) Changed(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cur, ok, err := c.Lookup(path)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	if cur.Size != info.Size() {
		return true, nil
	}
	if cur.Mtime.Equal(info.ModTime()) {
		return false, nil
	}

	hash, err := FileHash(path)
	if err != nil {
		return false, err
	}
	return hash != cur.SHA256, nil
}

// FileHash computes the sha256 hex digest of a file
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
