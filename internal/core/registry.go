package core

import "sort"

// Registry tracks which clients are joined to which rooms.
// Not safe for concurrent use; the hub goroutine owns it.
type Registry struct {
	rooms map[string]*Room
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Join adds the client to the named room, creating the room if needed.
// Other rooms the client is in are left untouched.
func (r *Registry) Join(name string, c *Client) bool {
	room, ok := r.rooms[name]
	if !ok {
		room = NewRoom(name)
		r.rooms[name] = room
	}
	c.Rooms[name] = struct{}{}
	return room.AddClient(c)
}

// Leave removes the client from one room. Empty rooms are dropped.
func (r *Registry) Leave(name string, c *Client) bool {
	room, ok := r.rooms[name]
	if !ok {
		return false
	}
	delete(c.Rooms, name)
	removed := room.RemoveClient(c)
	if room.Empty() {
		delete(r.rooms, name)
	}
	return removed
}

// RemoveClient takes the client out of every room and returns the room names it left.
func (r *Registry) RemoveClient(c *Client) []string {
	left := make([]string, 0, len(c.Rooms))
	for name := range c.Rooms {
		if r.Leave(name, c) {
			left = append(left, name)
		}
	}
	sort.Strings(left)
	return left
}

// Room returns the named room, or nil if nobody is in it.
func (r *Registry) Room(name string) *Room {
	return r.rooms[name]
}

// Presence lists the members of a room. No ordering is guaranteed.
func (r *Registry) Presence(name string) []Member {
	room, ok := r.rooms[name]
	if !ok {
		return []Member{}
	}
	return room.Members()
}

// Rooms summarizes all rooms with at least one member, sorted by name.
func (r *Registry) Rooms() []RoomInfo {
	infos := make([]RoomInfo, 0, len(r.rooms))
	for name, room := range r.rooms {
		infos = append(infos, RoomInfo{Name: name, Members: room.Len()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
