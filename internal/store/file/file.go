package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vovakirdan/wiredoc-server/internal/store"
)

// DefaultExt is appended to the room key to form the snapshot file name.
const DefaultExt = ".txt"

// FileStore implements store.SnapshotStore with one plain-text file per room.
// Files hold the raw document only: no header, no metadata.
type FileStore struct {
	dir string
	ext string

	once    sync.Once
	initErr error
}

// New creates a file store rooted at dir. The directory is created on first use.
func New(dir string) *FileStore {
	return &FileStore{dir: dir, ext: DefaultExt}
}

// Dir returns the snapshot directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the snapshot file path for a room.
func (s *FileStore) Path(room string) (string, error) {
	name, err := store.EscapeRoom(room)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+s.ext), nil
}

func (s *FileStore) ensureDir() error {
	s.once.Do(func() {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			s.initErr = fmt.Errorf("create data dir: %w", err)
		}
	})
	return s.initErr
}

// LoadSnapshot reads the whole snapshot file for a room.
func (s *FileStore) LoadSnapshot(_ context.Context, room string) (string, error) {
	path, err := s.Path(room)
	if err != nil {
		return "", err
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", store.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	return string(data), nil
}

// SaveSnapshot replaces the snapshot file for a room.
// The text is written to a temp file in the same directory and renamed over the old one.
func (s *FileStore) SaveSnapshot(_ context.Context, room, content string) error {
	path, err := s.Path(room)
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; files are not kept open between calls.
func (s *FileStore) Close() error {
	return nil
}
