package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wiredoc-server/internal/store"
)

// DefaultPresenceDelay is how long the hub waits after a disconnect before
// broadcasting presence to the rooms the client left.
const DefaultPresenceDelay = 50 * time.Millisecond

type inbound struct {
	client *Client
	cmd    *Command
}

// Hub owns all rooms and documents. Every command, from any client, runs to completion on
// the goroutine started by Run before the next one is looked at.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	inbox       chan inbound
	calls       chan func()
	presenceDue chan string

	clients         map[*Client]struct{}
	registry        *Registry
	docs            *Documents
	persist         *Persistence
	pendingPresence map[string]struct{}

	presenceDelay time.Duration
	log           *zerolog.Logger

	done chan struct{}
}

// Option customizes a Hub.
type Option func(*Hub)

// WithPresenceDelay sets the wait between a disconnect and the presence broadcast.
// Zero broadcasts immediately.
func WithPresenceDelay(d time.Duration) Option {
	return func(h *Hub) {
		if d >= 0 {
			h.presenceDelay = d
		}
	}
}

// WithStorageTimeout bounds each snapshot load and save.
func WithStorageTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.persist = NewPersistence(h.persist.store, h.log, d)
		h.docs = NewDocuments(h.persist)
	}
}

// NewHub creates a hub persisting snapshots to st. Both st and logger may be nil.
func NewHub(st store.SnapshotStore, logger *zerolog.Logger, opts ...Option) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	persist := NewPersistence(st, logger, DefaultStorageTimeout)
	h := &Hub{
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		inbox:           make(chan inbound, 64),
		calls:           make(chan func()),
		presenceDue:     make(chan string, 16),
		clients:         make(map[*Client]struct{}),
		registry:        NewRegistry(),
		docs:            NewDocuments(persist),
		persist:         persist,
		pendingPresence: make(map[string]struct{}),
		presenceDelay:   DefaultPresenceDelay,
		log:             logger,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes commands until ctx is cancelled. Queued snapshot writes are flushed
// before it returns.
func (h *Hub) Run(ctx context.Context) {
	h.persist.start()
	defer func() {
		close(h.done)
		h.persist.stop()
		h.log.Debug().Msg("hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug().Str("client_id", c.ID).Msg("client connected")
		case c := <-h.unregister:
			h.disconnect(c)
		case in := <-h.inbox:
			h.dispatch(ctx, in.client, in.cmd)
		case fn := <-h.calls:
			fn()
		case room := <-h.presenceDue:
			delete(h.pendingPresence, room)
			h.broadcastPresence(room)
		}
	}
}

// RegisterClient connects a client and starts forwarding its commands to the hub.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
		go h.pump(c)
	case <-h.done:
	}
}

// UnregisterClient disconnects a client. Commands it already queued are handled first.
// The client must not send commands afterwards.
func (h *Hub) UnregisterClient(c *Client) {
	c.closeCommands()
}

func (h *Hub) pump(c *Client) {
	for cmd := range c.Commands {
		if cmd == nil {
			continue
		}
		select {
		case h.inbox <- inbound{client: c, cmd: cmd}:
		case <-h.done:
			return
		}
	}
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandJoin:
		h.join(ctx, c, cmd)
	case CommandEdit:
		h.edit(c, cmd)
	case CommandCursor:
		h.cursor(c, cmd)
	default:
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeUnknownCommand, "unknown command")})
	}
}

func (h *Hub) join(ctx context.Context, c *Client, cmd *Command) {
	room := RoomOrDefault(cmd.Room)
	c.Name = NameOrDefault(cmd.Username)
	c.Room = room

	h.registry.Join(room, c)
	content := h.docs.GetOrLoad(ctx, room)

	h.send(c, &Event{Kind: EventDocument, Room: room, Content: content})
	h.broadcastPresence(room)

	h.log.Info().Str("client_id", c.ID).Str("room", room).Str("username", c.Name).Msg("client joined room")
}

func (h *Hub) edit(c *Client, cmd *Command) {
	room, ok := NormalizeRoom(cmd.Room)
	if !ok {
		return
	}
	h.docs.Set(room, cmd.Content)

	r := h.registry.Room(room)
	if r == nil {
		return
	}
	h.fanOut(r, &Event{
		Kind:    EventUpdate,
		Room:    room,
		Content: cmd.Content,
		From:    c.ID,
		Seq:     cmd.Seq,
	}, c)
}

func (h *Hub) cursor(c *Client, cmd *Command) {
	room, ok := NormalizeRoom(cmd.Room)
	if !ok {
		return
	}
	r := h.registry.Room(room)
	if r == nil {
		return
	}
	h.fanOut(r, &Event{
		Kind:     EventCursor,
		Room:     room,
		From:     c.ID,
		Username: NameOrDefault(c.Name),
		Cursor:   cmd.Cursor,
	}, c)
}

// disconnect removes the client from every room right away, then schedules presence
// for the rooms it left. Further commands from the client are ignored.
func (h *Hub) disconnect(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	rooms := h.registry.RemoveClient(c)
	close(c.Events)

	h.log.Debug().Str("client_id", c.ID).Strs("rooms", rooms).Msg("client disconnected")

	for _, room := range rooms {
		h.schedulePresence(room)
	}
}

func (h *Hub) schedulePresence(room string) {
	if h.presenceDelay <= 0 {
		h.broadcastPresence(room)
		return
	}
	if _, pending := h.pendingPresence[room]; pending {
		return
	}
	h.pendingPresence[room] = struct{}{}
	time.AfterFunc(h.presenceDelay, func() {
		select {
		case h.presenceDue <- room:
		case <-h.done:
		}
	})
}

func (h *Hub) broadcastPresence(room string) {
	r := h.registry.Room(room)
	if r == nil {
		return
	}
	h.fanOut(r, &Event{Kind: EventPresence, Room: room, Members: r.Members()}, nil)
}

func (h *Hub) fanOut(r *Room, event *Event, except *Client) {
	if dropped := r.BroadcastExcept(event, except); dropped > 0 {
		h.log.Warn().Str("room", r.Name).Stringer("event", event.Kind).Int("dropped", dropped).Msg("slow consumers, events dropped")
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		h.log.Warn().Str("client_id", c.ID).Stringer("event", event.Kind).Msg("slow consumer, event dropped")
	}
}

// call runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case h.calls <- wrapped:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Document returns a room's current text. Rooms not held in memory are read from the
// snapshot store off the hub goroutine and are not cached.
func (h *Hub) Document(ctx context.Context, room string) (string, error) {
	room = RoomOrDefault(room)
	var (
		content string
		cached  bool
	)
	err := h.call(ctx, func() {
		content, cached = h.docs.Lookup(room)
	})
	if err != nil || cached {
		return content, err
	}
	content, _ = h.persist.Load(ctx, room)
	return content, nil
}

// Presence returns the members of a room.
func (h *Hub) Presence(ctx context.Context, room string) ([]Member, error) {
	room = RoomOrDefault(room)
	var members []Member
	err := h.call(ctx, func() {
		members = h.registry.Presence(room)
	})
	return members, err
}

// Rooms lists rooms that currently have members.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := h.call(ctx, func() {
		rooms = h.registry.Rooms()
	})
	return rooms, err
}
