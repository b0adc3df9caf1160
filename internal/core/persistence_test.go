package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPersistenceLoad(t *testing.T) {
	st := newMemStore()
	st.data["r1"] = "hello"
	p := NewPersistence(st, nil, 0)
	ctx := context.Background()

	if content, ok := p.Load(ctx, "r1"); !ok || content != "hello" {
		t.Fatalf("expected hello, got %q (%v)", content, ok)
	}
	if content, ok := p.Load(ctx, "missing"); ok || content != "" {
		t.Fatalf("expected absent, got %q (%v)", content, ok)
	}

	st.failLoads(errDisk)
	if content, ok := p.Load(ctx, "r1"); ok || content != "" {
		t.Fatalf("expected read failure to look absent, got %q (%v)", content, ok)
	}
}

func TestPersistenceLoadGivesUpOnStuckStore(t *testing.T) {
	st := newStallingStore(false)
	t.Cleanup(st.unblock)
	p := NewPersistence(st, nil, 20*time.Millisecond)

	start := time.Now()
	content, ok := p.Load(context.Background(), "r1")
	if ok || content != "" {
		t.Fatalf("expected stuck load to look absent, got %q (%v)", content, ok)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("load waited %v for a stuck store", elapsed)
	}
}

func TestPersistenceSaveReportsFailure(t *testing.T) {
	st := newMemStore()
	p := NewPersistence(st, nil, 0)
	ctx := context.Background()

	if err := p.Save(ctx, "r1", "v1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	st.failSaves(errDisk)
	if err := p.Save(ctx, "r1", "v2"); !errors.Is(err, errDisk) {
		t.Fatalf("expected errDisk, got %v", err)
	}
	if got, _ := st.get("r1"); got != "v1" {
		t.Fatalf("expected previous snapshot to remain, got %q", got)
	}
}

func TestPersistenceEnqueueKeepsLatestPerRoom(t *testing.T) {
	st := newMemStore()
	p := NewPersistence(st, nil, 0)

	for _, v := range []string{"a", "b", "c", "d"} {
		p.Enqueue("r1", v)
	}
	p.Enqueue("r2", "x")
	if n := p.Pending(); n != 2 {
		t.Fatalf("expected 2 pending rooms, got %d", n)
	}

	p.start()
	p.stop()

	if got, _ := st.get("r1"); got != "d" {
		t.Fatalf("expected last queued value, got %q", got)
	}
	if got, _ := st.get("r2"); got != "x" {
		t.Fatalf("expected r2 saved, got %q", got)
	}
	if n := st.saveCount(); n != 2 {
		t.Fatalf("expected one save per room, got %d", n)
	}
	if n := p.Pending(); n != 0 {
		t.Fatalf("expected nothing pending after stop, got %d", n)
	}
}

func TestPersistenceEnqueueDoesNotBlockOnStuckStore(t *testing.T) {
	st := newStallingStore(true)
	p := NewPersistence(st, nil, 50*time.Millisecond)
	p.start()
	defer p.stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			p.Enqueue("r1", "v")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked behind a stuck store")
	}
}

func TestPersistenceWithoutStore(t *testing.T) {
	p := NewPersistence(nil, nil, 0)

	if _, ok := p.Load(context.Background(), "r1"); ok {
		t.Fatal("expected nothing to load")
	}
	if err := p.Save(context.Background(), "r1", "x"); err != nil {
		t.Fatalf("expected no-op save, got %v", err)
	}
	p.Enqueue("r1", "x")
	if n := p.Pending(); n != 0 {
		t.Fatalf("expected nothing pending, got %d", n)
	}
}
