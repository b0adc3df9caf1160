package core

import "strings"

const (
	// DefaultRoom is used when a join names no room.
	DefaultRoom = "default"
	// DefaultName is used when a join names no user.
	DefaultName = "Anonymous"
)

// Member is one entry of a room's presence list.
type Member struct {
	ID       string
	Username string
}

// RoomInfo summarizes a room with live members.
type RoomInfo struct {
	Name    string
	Members int
}

// NormalizeRoom trims a room key. ok is false when nothing is left.
func NormalizeRoom(room string) (string, bool) {
	room = strings.TrimSpace(room)
	return room, room != ""
}

// RoomOrDefault returns the trimmed room key, or DefaultRoom if it is empty.
func RoomOrDefault(room string) string {
	if r, ok := NormalizeRoom(room); ok {
		return r
	}
	return DefaultRoom
}

// NameOrDefault returns the display name as sent, or DefaultName if it is blank.
func NameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultName
	}
	return name
}
