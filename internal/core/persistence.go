package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wiredoc-server/internal/store"
)

// DefaultStorageTimeout bounds a single snapshot load or save.
const DefaultStorageTimeout = 5 * time.Second

var errLoadTimeout = errors.New("snapshot load timed out")

// Persistence loads and saves room snapshots, logging failures instead of returning them
// to clients. A nil store keeps documents in memory only.
//
// Enqueue never blocks: only the latest pending text of each room is kept, and a single
// writer goroutine saves it. A slow store delays snapshots, never the caller.
type Persistence struct {
	store   store.SnapshotStore
	log     *zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]string

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewPersistence wraps st. timeout bounds each load and save; zero or less uses
// DefaultStorageTimeout.
func NewPersistence(st store.SnapshotStore, logger *zerolog.Logger, timeout time.Duration) *Persistence {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	return &Persistence{
		store:   st,
		log:     logger,
		timeout: timeout,
		pending: make(map[string]string),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Load returns the room's snapshot. ok is false when there is none or it could not be read
// within the timeout. A store that ignores cancellation is abandoned, not waited for.
func (p *Persistence) Load(ctx context.Context, room string) (content string, ok bool) {
	if p.store == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		content string
		err     error
	}
	res := make(chan result, 1)
	go func() {
		content, err := p.store.LoadSnapshot(ctx, room)
		res <- result{content: content, err: err}
	}()

	var r result
	select {
	case r = <-res:
	case <-ctx.Done():
		r = result{err: errLoadTimeout}
	}

	if r.err != nil {
		if !errors.Is(r.err, store.ErrSnapshotNotFound) {
			p.log.Error().Err(r.err).Str("room", room).Msg("failed to load snapshot")
		}
		return "", false
	}
	return r.content, true
}

// Save writes the room's snapshot synchronously. Failures are logged and returned.
func (p *Persistence) Save(ctx context.Context, room, content string) error {
	if p.store == nil {
		return nil
	}
	if err := p.store.SaveSnapshot(ctx, room, content); err != nil {
		p.log.Error().Err(err).Str("room", room).Msg("failed to save snapshot")
		return err
	}
	p.log.Debug().Str("room", room).Int("bytes", len(content)).Msg("snapshot saved")
	return nil
}

// Enqueue schedules an asynchronous save, replacing any text of the same room that has
// not been written yet.
func (p *Persistence) Enqueue(room, content string) {
	if p.store == nil {
		return
	}
	p.mu.Lock()
	p.pending[room] = content
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of rooms waiting to be saved.
func (p *Persistence) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// start launches the writer goroutine.
func (p *Persistence) start() {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.wake:
				p.flush()
			case <-p.quit:
				p.flush()
				return
			}
		}
	}()
}

func (p *Persistence) flush() {
	for {
		p.mu.Lock()
		batch := p.pending
		p.pending = make(map[string]string)
		p.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for room, content := range batch {
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			_ = p.Save(ctx, room, content)
			cancel()
		}
	}
}

// stop writes whatever is still pending and waits for the writer to exit.
func (p *Persistence) stop() {
	close(p.quit)
	<-p.done
}
