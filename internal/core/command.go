package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin subscribes the client to a room and names it.
	CommandJoin CommandKind = iota
	// CommandEdit replaces a room's document.
	CommandEdit
	// CommandCursor relays a cursor position to the rest of a room.
	CommandCursor
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Room     string
	Username string          // CommandJoin
	Content  string          // CommandEdit
	Seq      json.RawMessage // CommandEdit, opaque
	Cursor   json.RawMessage // CommandCursor, opaque
}
