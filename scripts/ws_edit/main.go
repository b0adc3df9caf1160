package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

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

// document is the local copy of the room's text.
type document struct {
	mu      sync.Mutex
	content string
	seq     int64
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_edit: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "default", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	joinPayload, err := json.Marshal(proto.JoinData{Room: *room, Username: *user})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Each line is appended to the document. Ctrl+C to exit.")

	doc := &document{}
	go func() {
		defer cancel()
		readLoop(ctx, conn, doc)
	}()

	writeLoop(ctx, conn, *room, doc)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, doc *document) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if f.Error != nil {
			fmt.Printf("error %s: %s\n", f.Error.Code, f.Error.Msg)
			continue
		}

		switch f.Event {
		case proto.EventDoc:
			var evt proto.EventDocData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal doc: %v", err)
				continue
			}
			doc.replace(evt.Content)
			fmt.Printf("--- %s ---\n%s\n---\n", f.Room, evt.Content)
		case proto.EventUpdate:
			var evt proto.EventUpdateData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal update: %v", err)
				continue
			}
			doc.replace(evt.Content)
			fmt.Printf("--- %s (edit by %s, seq %s) ---\n%s\n---\n", f.Room, evt.From, evt.Seq, evt.Content)
		case proto.EventPresence:
			var members []proto.PresenceEntry
			if err := json.Unmarshal(f.Data, &members); err != nil {
				log.Printf("unmarshal presence: %v", err)
				continue
			}
			names := make([]string, 0, len(members))
			for _, m := range members {
				names = append(names, m.Username)
			}
			fmt.Printf("[room %s] online: %s\n", f.Room, strings.Join(names, ", "))
		case proto.EventCursor:
		default:
			fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string, doc *document) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			content, seq := doc.append(line)
			payload, err := json.Marshal(proto.EditData{Room: room, Content: content, Seq: json.RawMessage(strconv.FormatInt(seq, 10))})
			if err != nil {
				log.Printf("marshal edit: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeEdit, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func (d *document) replace(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
}

func (d *document) append(line string) (string, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.content == "" {
		d.content = line
	} else {
		d.content += "\n" + line
	}
	d.seq++
	return d.content, d.seq
}
