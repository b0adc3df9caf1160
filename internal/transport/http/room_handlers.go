package http

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RoomHandlers provides read-only HTTP handlers for rooms.
type RoomHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// MemberResponse is one entry of a presence list.
type MemberResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ListRooms lists rooms that have connected members.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service unavailable"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, RoomResponse{Name: room.Name, Members: room.Members})
	}
	c.JSON(http.StatusOK, response)
}

// Presence lists a room's members.
// GET /api/rooms/:room/presence
func (h *RoomHandlers) Presence(c *gin.Context) {
	room := c.Param("room")
	members, err := h.hub.Presence(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to get presence")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service unavailable"})
		return
	}

	response := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		response = append(response, MemberResponse{ID: m.ID, Username: m.Username})
	}
	c.JSON(http.StatusOK, response)
}

// Document downloads a room's current text as a file.
// GET /api/rooms/:room/document
func (h *RoomHandlers) Document(c *gin.Context) {
	room := c.Param("room")
	content, err := h.hub.Document(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to get document")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service unavailable"})
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": room + ".txt"})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}
