package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoin   = "join"
	InboundTypeEdit   = "edit"
	InboundTypeCursor = "cursor"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventConnected = "connected"
	EventDoc       = "doc"
	EventUpdate    = "update"
	EventPresence  = "presence"
	EventCursor    = "cursor"
)

// JoinData requests to join a room under a display name.
type JoinData struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// EditData carries the full new text of a room's document. Seq is relayed verbatim.
type EditData struct {
	Room    string          `json:"room"`
	Content string          `json:"content"`
	Seq     json.RawMessage `json:"seq,omitempty"`
}

// CursorData carries an opaque cursor position.
type CursorData struct {
	Room   string          `json:"room"`
	Cursor json.RawMessage `json:"cursor"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Room  string `json:"room,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventConnectedData tells a new connection its identifier.
type EventConnectedData struct {
	ID       string `json:"id"`
	Protocol int    `json:"protocol"`
}

// EventDocData is the room's current text, sent to a joining client.
type EventDocData struct {
	Content string `json:"content"`
}

// EventUpdateData is another client's edit.
type EventUpdateData struct {
	Content string          `json:"content"`
	From    string          `json:"from"`
	Seq     json.RawMessage `json:"seq,omitempty"`
}

// PresenceEntry is one member of a room.
type PresenceEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// EventCursorData is another client's cursor.
type EventCursorData struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Cursor   json.RawMessage `json:"cursor"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
