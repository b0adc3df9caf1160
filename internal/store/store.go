package store

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrSnapshotNotFound is returned when a room has no persisted snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidRoom is returned for room keys that cannot be stored.
var ErrInvalidRoom = errors.New("invalid room key")

// Backend names accepted in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// SnapshotReader loads persisted room documents.
type SnapshotReader interface {
	// LoadSnapshot returns the raw document text for a room.
	// Returns ErrSnapshotNotFound if nothing was ever saved for it.
	LoadSnapshot(ctx context.Context, room string) (string, error)
}

// SnapshotWriter persists room documents.
type SnapshotWriter interface {
	// SaveSnapshot replaces the stored text for a room in full.
	SaveSnapshot(ctx context.Context, room, content string) error
}

// SnapshotStore aggregates snapshot read and write access.
type SnapshotStore interface {
	SnapshotReader
	SnapshotWriter

	// Close releases the underlying resources.
	Close() error
}

// EscapeRoom maps a room key to a storage-safe name.
// Ordinary keys are returned unchanged; separators and other unsafe bytes are percent-encoded.
func EscapeRoom(room string) (string, error) {
	if room == "" || strings.ContainsRune(room, 0) {
		return "", ErrInvalidRoom
	}
	return url.PathEscape(room), nil
}
