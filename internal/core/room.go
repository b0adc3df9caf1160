package core

// Room groups clients joined to the same document.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Has reports whether the client is a member.
func (r *Room) Has(c *Client) bool {
	_, ok := r.clients[c]
	return ok
}

// BroadcastExcept sends an event to every client but except, which may be nil.
// Returns how many slow clients were skipped.
func (r *Room) BroadcastExcept(event *Event, except *Client) int {
	dropped := 0
	for client := range r.clients {
		if client == except {
			continue
		}
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
			dropped++
		}
	}
	return dropped
}

// Members lists the room's clients in map order.
func (r *Room) Members() []Member {
	members := make([]Member, 0, len(r.clients))
	for client := range r.clients {
		members = append(members, Member{ID: client.ID, Username: NameOrDefault(client.Name)})
	}
	return members
}

// Len returns the number of clients in the room.
func (r *Room) Len() int {
	return len(r.clients)
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
