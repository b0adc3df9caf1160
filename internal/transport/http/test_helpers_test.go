package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wiredoc-server/internal/config"
	"github.com/vovakirdan/wiredoc-server/internal/core"
	"github.com/vovakirdan/wiredoc-server/internal/proto"
	"github.com/vovakirdan/wiredoc-server/internal/store"
)

// frame is an outbound message with its payload left raw.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Room  string          `json:"room"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.PresenceDelay = 10 * time.Millisecond
	return &cfg
}

// startTestServer runs a hub and an httptest server around it.
// The returned func stops the hub early; cleanup does it otherwise.
func startTestServer(t *testing.T, st store.SnapshotStore, cfg *config.Config) (*httptest.Server, func()) {
	t.Helper()

	if cfg == nil {
		cfg = testConfig()
	}
	disabledLogger := zerolog.New(nil)

	hub := core.NewHub(st, &disabledLogger, core.WithPresenceDelay(cfg.PresenceDelay))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, cancel
}

type wsClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
	id   string
}

// dial connects and consumes the connected event.
func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *wsClient {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	c := &wsClient{t: t, ctx: ctx, conn: conn}
	f := c.next(proto.EventConnected)
	var connected proto.EventConnectedData
	if err := json.Unmarshal(f.Data, &connected); err != nil {
		t.Fatalf("unmarshal connected: %v", err)
	}
	if connected.ID == "" || connected.Protocol != proto.ProtocolVersion {
		t.Fatalf("unexpected connected payload: %+v", connected)
	}
	c.id = connected.ID
	return c
}

func (c *wsClient) send(typ string, data any) {
	c.t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		c.t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(c.ctx, c.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		c.t.Fatalf("send %s: %v", typ, err)
	}
}

// next reads frames until one carries the named event, or an error frame if event is "error".
func (c *wsClient) next(event string) frame {
	c.t.Helper()

	for {
		var f frame
		if err := wsjson.Read(c.ctx, c.conn, &f); err != nil {
			c.t.Fatalf("waiting for %q: %v", event, err)
		}
		if event == proto.OutboundTypeError && f.Type == proto.OutboundTypeError {
			return f
		}
		if f.Type == proto.OutboundTypeEvent && f.Event == event {
			return f
		}
	}
}

// presence reads presence frames until one lists n members.
func (c *wsClient) presence(n int) []proto.PresenceEntry {
	c.t.Helper()

	for {
		f := c.next(proto.EventPresence)
		var entries []proto.PresenceEntry
		if err := json.Unmarshal(f.Data, &entries); err != nil {
			c.t.Fatalf("unmarshal presence: %v", err)
		}
		if len(entries) == n {
			return entries
		}
	}
}
