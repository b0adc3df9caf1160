package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/wiredoc-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadSnapshot(ctx, "r1"); err != store.ErrSnapshotNotFound {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	tests := []struct {
		name    string
		content string
	}{
		{name: "first save", content: "hello"},
		{name: "overwrite", content: "hello world"},
		{name: "empty document", content: ""},
		{name: "multiline", content: "a\nb\n\tc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.SaveSnapshot(ctx, "r1", tt.content); err != nil {
				t.Fatalf("SaveSnapshot failed: %v", err)
			}
			got, err := s.LoadSnapshot(ctx, "r1")
			if err != nil {
				t.Fatalf("LoadSnapshot failed: %v", err)
			}
			if got != tt.content {
				t.Errorf("expected %q, got %q", tt.content, got)
			}
		})
	}
}

func TestSnapshotsAreScopedByRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSnapshot(ctx, "a", "alpha"); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.SaveSnapshot(ctx, "b", "beta"); err != nil {
		t.Fatalf("save b: %v", err)
	}

	for room, want := range map[string]string{"a": "alpha", "b": "beta"} {
		got, err := s.LoadSnapshot(ctx, room)
		if err != nil {
			t.Fatalf("load %s: %v", room, err)
		}
		if got != want {
			t.Errorf("room %s: expected %q, got %q", room, want, got)
		}
	}

	if _, err := s.LoadSnapshot(ctx, "missing"); err != store.ErrSnapshotNotFound {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestNewCreatesSchemaOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.SaveSnapshot(context.Background(), "r1", "persisted"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadSnapshot(context.Background(), "r1")
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if got != "persisted" {
		t.Errorf("expected %q, got %q", "persisted", got)
	}
}
