// Package history persists device transitions in a SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite history database.
type DB struct {
	db   *sql.DB
	path string
	log  zerolog.Logger
	now  func() time.Time

	// errMu guards lastErr, the last write failure seen by the event handlers.
	errMu   sync.Mutex
	lastErr error
}

// Open opens (or creates) the history database in dir.
func Open(dir string, log zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dbPath := filepath.Join(dir, "history.db")
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode so `history` can read while `watch` writes
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	h := &DB{db: sqlDB, path: dbPath, log: log, now: time.Now}
	if err := h.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return h, nil
}

// Close closes the database.
func (h *DB) Close() error {
	return h.db.Close()
}

// Path returns the path to the history database file.
func (h *DB) Path() string {
	return h.path
}

func (h *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		serial TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		product TEXT NOT NULL DEFAULT '',
		conn_type TEXT NOT NULL DEFAULT '',
		connected INTEGER NOT NULL DEFAULT 0,
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transitions (
		id TEXT PRIMARY KEY,
		serial TEXT NOT NULL,
		kind TEXT NOT NULL,
		old_state TEXT NOT NULL DEFAULT '',
		new_state TEXT NOT NULL DEFAULT '',
		observed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transitions_serial ON transitions(serial);
	CREATE INDEX IF NOT EXISTS idx_transitions_observed ON transitions(observed_at);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
