package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/vovakirdan/wiredoc-server/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Room  string          `json:"room"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run opens an editor and an observer connection, edits as the editor and
// waits until the observer sees the update.
func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to join with")
	room := flag.String("room", "smoke", "room name")
	text := flag.String("text", "hello from smoke test", "document text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	editor, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer editor.Close(websocket.StatusNormalClosure, "bye")

	observer, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer observer.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, observer, proto.InboundTypeJoin, proto.JoinData{Room: *room, Username: *user + "-observer"}); err != nil {
		return err
	}
	if _, err := await(ctx, observer, proto.EventDoc); err != nil {
		return err
	}

	if err := send(ctx, editor, proto.InboundTypeJoin, proto.JoinData{Room: *room, Username: *user}); err != nil {
		return err
	}
	if _, err := await(ctx, editor, proto.EventDoc); err != nil {
		return err
	}
	if err := send(ctx, editor, proto.InboundTypeEdit, proto.EditData{Room: *room, Content: *text, Seq: json.RawMessage(`1`)}); err != nil {
		return err
	}

	f, err := await(ctx, observer, proto.EventUpdate)
	if err != nil {
		return err
	}
	var update proto.EventUpdateData
	if err := json.Unmarshal(f.Data, &update); err != nil {
		return fmt.Errorf("unmarshal update: %w", err)
	}
	if update.Content != *text {
		return fmt.Errorf("observer got %q, want %q", update.Content, *text)
	}
	fmt.Println("smoke test passed")
	return nil
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// await prints every frame until one carries the named event.
func await(ctx context.Context, conn *websocket.Conn, event string) (frame, error) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return f, fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", f.Type)
		if f.Event != "" {
			fmt.Printf(" event=%s room=%s data=%s", f.Event, f.Room, f.Data)
		}
		fmt.Println()

		if f.Error != nil {
			return f, fmt.Errorf("server error %s: %s", f.Error.Code, f.Error.Msg)
		}
		if f.Event == event {
			return f, nil
		}
	}
}
