package core

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wiredoc-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustPresence waits for a presence event listing exactly n members.
func mustPresence(t *testing.T, ch <-chan *Event, n int) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ev := mustEvent(t, ch, EventPresence)
		if len(ev.Members) == n {
			return ev
		}
	}
	t.Fatalf("expected presence with %d members not received", n)
	return nil
}

// noEvent fails if an event of the given kind is already queued on ch.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected %v event: %+v", kind, ev)
			}
		default:
			return
		}
	}
}

func seq(n int) json.RawMessage {
	return json.RawMessage(strconv.Itoa(n))
}

func sortedMembers(members []Member) []Member {
	out := append([]Member(nil), members...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func startHub(t *testing.T, st store.SnapshotStore, opts ...Option) (*Hub, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	hub := NewHub(st, nil, opts...)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	stop := func() {
		cancel()
		<-stopped
	}
	t.Cleanup(stop)
	return hub, stop
}

func joinedClient(t *testing.T, hub *Hub, id, name, room string) *Client {
	t.Helper()

	c := NewClient(id, "")
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoin, Room: room, Username: name}
	mustEvent(t, c.Events, EventDocument)
	return c
}

// memStore is an in-memory store.SnapshotStore with switchable failures.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	loads   map[string]int
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{
		data:  make(map[string]string),
		loads: make(map[string]int),
	}
}

var errDisk = errors.New("disk on fire")

func (m *memStore) LoadSnapshot(_ context.Context, room string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads[room]++
	if m.loadErr != nil {
		return "", m.loadErr
	}
	content, ok := m.data[room]
	if !ok {
		return "", store.ErrSnapshotNotFound
	}
	return content, nil
}

func (m *memStore) SaveSnapshot(_ context.Context, room, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[room] = content
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) get(room string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.data[room]
	return content, ok
}

func (m *memStore) loadCount(room string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[room]
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) failLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *memStore) failSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// stallingStore blocks every call until release is closed. With honorCancel it gives up
// when the context is done, otherwise it ignores cancellation entirely.
type stallingStore struct {
	release     chan struct{}
	honorCancel bool
}

func newStallingStore(honorCancel bool) *stallingStore {
	return &stallingStore{release: make(chan struct{}), honorCancel: honorCancel}
}

func (s *stallingStore) wait(ctx context.Context) error {
	if !s.honorCancel {
		<-s.release
		return nil
	}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stallingStore) LoadSnapshot(ctx context.Context, _ string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return "", store.ErrSnapshotNotFound
}

func (s *stallingStore) SaveSnapshot(ctx context.Context, _, _ string) error {
	return s.wait(ctx)
}

func (s *stallingStore) Close() error { return nil }

func (s *stallingStore) unblock() { close(s.release) }

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}
