package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wiredoc-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	room       TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.SnapshotStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the snapshot schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits before setup
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadSnapshot retrieves the stored text for a room.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, room string) (string, error) {
	query := `SELECT content FROM snapshots WHERE room = ?`

	var content string
	if err := s.db.QueryRowContext(ctx, query, room).Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("query snapshot: %w", err)
	}
	return content, nil
}

// SaveSnapshot upserts the text for a room.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, room, content string) error {
	query := `
		INSERT INTO snapshots (room, content, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(room) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, room, content); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
