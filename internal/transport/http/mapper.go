package http

import (
	"encoding/json"

	"github.com/vovakirdan/wiredoc-server/internal/core"
	"github.com/vovakirdan/wiredoc-server/internal/proto"
)

// inboundToCommand maps a client frame to a core command.
// A non-nil *proto.Error is reported to the sender; the frame is otherwise dropped.
// Missing rooms are passed through: the hub decides whether that is a no-op.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, badRequest("invalid join payload")
		}
		return &core.Command{
			Kind:     core.CommandJoin,
			Room:     join.Room,
			Username: join.Username,
		}, nil
	case proto.InboundTypeEdit:
		var edit proto.EditData
		if err := decodeData(inbound.Data, &edit); err != nil {
			return nil, badRequest("invalid edit payload")
		}
		return &core.Command{
			Kind:    core.CommandEdit,
			Room:    edit.Room,
			Content: edit.Content,
			Seq:     edit.Seq,
		}, nil
	case proto.InboundTypeCursor:
		var cursor proto.CursorData
		if err := decodeData(inbound.Data, &cursor); err != nil {
			return nil, badRequest("invalid cursor payload")
		}
		return &core.Command{
			Kind:   core.CommandCursor,
			Room:   cursor.Room,
			Cursor: cursor.Cursor,
		}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

// decodeData treats an absent payload as an empty object.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventDocument:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventDoc,
			Room:  event.Room,
			Data:  proto.EventDocData{Content: event.Content},
		}
	case core.EventUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUpdate,
			Room:  event.Room,
			Data: proto.EventUpdateData{
				Content: event.Content,
				From:    event.From,
				Seq:     event.Seq,
			},
		}
	case core.EventPresence:
		entries := make([]proto.PresenceEntry, 0, len(event.Members))
		for _, m := range event.Members {
			entries = append(entries, proto.PresenceEntry{ID: m.ID, Username: m.Username})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPresence,
			Room:  event.Room,
			Data:  entries,
		}
	case core.EventCursor:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCursor,
			Room:  event.Room,
			Data: proto.EventCursorData{
				ID:       event.From,
				Username: event.Username,
				Cursor:   event.Cursor,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
