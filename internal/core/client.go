package core

import "sync"

// Client is a connection as seen by the core layer.
// Name, Room and Rooms are owned by the hub goroutine once the client is registered.
type Client struct {
	ID       string
	Name     string
	Room     string
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id, name string) *Client {
	return &Client{
		ID:       id,
		Name:     NameOrDefault(name),
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 64),
		Rooms:    make(map[string]struct{}),
	}
}

// closeCommands stops accepting commands. Already queued commands are still delivered.
func (c *Client) closeCommands() {
	c.closeOnce.Do(func() {
		close(c.Commands)
	})
}
