package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventDocument delivers a room's current text to a joining client.
	EventDocument EventKind = iota
	// EventUpdate notifies room members about another member's edit.
	EventUpdate
	// EventPresence delivers the room's member list.
	EventPresence
	// EventCursor relays another member's cursor.
	EventCursor
	// EventError notifies a client about a rejected command.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventDocument:
		return "doc"
	case EventUpdate:
		return "update"
	case EventPresence:
		return "presence"
	case EventCursor:
		return "cursor"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in a room.
type Event struct {
	Kind     EventKind
	Room     string
	Content  string          // EventDocument, EventUpdate
	From     string          // EventUpdate, EventCursor: sender client ID
	Username string          // EventCursor
	Seq      json.RawMessage // EventUpdate, as sent
	Cursor   json.RawMessage // EventCursor
	Members  []Member        // EventPresence
	Error    *CoreError
}
