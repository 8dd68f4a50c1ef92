package signaling_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kendevco/discordant/internal/infrastructure/registry"
	"github.com/kendevco/discordant/internal/infrastructure/signaling"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestRelayServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := registry.New[*signaling.Client]()
	relay := signaling.NewRelay(reg, signaling.Config{
		PongTimeout: 30 * time.Second,
	}, zap.NewNop().Sugar(), signaling.NewMetrics(prometheus.NewRegistry()))

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		relay.ServeConn(conn, r.URL.Query().Get("roomId"), r.URL.Query().Get("userId"))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, roomID, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?roomId=" + roomID + "&userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return frame
}

func join(t *testing.T, conn *websocket.Conn, roomID, userID string) map[string]any {
	t.Helper()

	sendJSON(t, conn, map[string]any{"type": "join", "roomId": roomID, "userId": userID})
	info := readFrame(t, conn)
	if info["type"] != "room-info" {
		t.Fatalf("expected room-info after join, got %v", info["type"])
	}
	return info
}

func TestJoinSequence(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	info := join(t, alice, "room1", "alice")

	users, ok := info["users"].([]any)
	if !ok {
		t.Fatalf("room-info users missing or wrong type: %v", info["users"])
	}
	if len(users) != 0 {
		t.Fatalf("first joiner saw users %v, want empty", users)
	}

	bob := dial(t, srv, "room1", "bob")
	info = join(t, bob, "room1", "bob")

	users = info["users"].([]any)
	if len(users) != 1 || users[0] != "alice" {
		t.Fatalf("second joiner saw users %v, want [alice]", users)
	}

	joined := readFrame(t, alice)
	if joined["type"] != "user-joined" || joined["userId"] != "bob" {
		t.Fatalf("expected user-joined bob, got %v", joined)
	}
}

func TestRelayRewritesSenderID(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	join(t, alice, "room1", "alice")

	bob := dial(t, srv, "room1", "bob")
	join(t, bob, "room1", "bob")
	readFrame(t, alice) // user-joined bob

	// Bob targets alice by id; alice must see bob as the sender.
	sendJSON(t, bob, map[string]any{
		"type":   "offer",
		"userId": "alice",
		"offer":  map[string]any{"type": "offer", "sdp": "v=0 test"},
	})

	frame := readFrame(t, alice)
	if frame["type"] != "offer" {
		t.Fatalf("expected offer, got %v", frame["type"])
	}
	if frame["userId"] != "bob" {
		t.Fatalf("relayed offer userId = %v, want bob (sender)", frame["userId"])
	}

	offer, _ := frame["offer"].(map[string]any)
	if offer == nil || offer["sdp"] != "v=0 test" {
		t.Fatalf("offer payload not forwarded verbatim: %v", frame["offer"])
	}
}

func TestRelayDropsWhenTargetGone(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	join(t, alice, "room1", "alice")

	// No one called "nobody": the frame vanishes and the connection stays up.
	sendJSON(t, alice, map[string]any{
		"type":      "ice-candidate",
		"userId":    "nobody",
		"candidate": map[string]any{"candidate": "candidate:1"},
	})

	sendJSON(t, alice, map[string]any{"type": "ping", "timestamp": 42})
	frame := readFrame(t, alice)
	if frame["type"] != "pong" {
		t.Fatalf("connection unusable after unroutable signal: got %v", frame)
	}
}

func TestPingPong(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	join(t, alice, "room1", "alice")

	sendJSON(t, alice, map[string]any{"type": "ping", "timestamp": 12345})

	frame := readFrame(t, alice)
	if frame["type"] != "pong" {
		t.Fatalf("expected pong, got %v", frame["type"])
	}
	if frame["timestamp"] != float64(12345) {
		t.Fatalf("pong timestamp = %v, want the original 12345", frame["timestamp"])
	}
	if _, ok := frame["latency"]; !ok {
		t.Fatal("pong missing latency field")
	}
}

func TestStatsBroadcastExcludesSender(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	join(t, alice, "room1", "alice")

	bob := dial(t, srv, "room1", "bob")
	join(t, bob, "room1", "bob")
	readFrame(t, alice) // user-joined bob

	sendJSON(t, alice, map[string]any{
		"type":  "stats",
		"stats": map[string]any{"rtt": 23},
	})

	frame := readFrame(t, bob)
	if frame["type"] != "stats-update" || frame["userId"] != "alice" {
		t.Fatalf("expected stats-update from alice, got %v", frame)
	}

	stats, _ := frame["stats"].(map[string]any)
	if stats == nil || stats["rtt"] != float64(23) {
		t.Fatalf("stats payload not forwarded: %v", frame["stats"])
	}

	// The sender must not hear its own stats echoed back.
	sendJSON(t, alice, map[string]any{"type": "ping", "timestamp": 1})
	frame = readFrame(t, alice)
	if frame["type"] != "pong" {
		t.Fatalf("sender received its own stats-update: %v", frame)
	}
}

func TestFramesBeforeJoinAreIgnored(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")

	// Not joined yet: nothing below may produce a reply or close the socket.
	sendJSON(t, alice, map[string]any{"type": "ping", "timestamp": 7})
	sendJSON(t, alice, map[string]any{"type": "offer", "userId": "bob"})

	info := join(t, alice, "room1", "alice")
	if users := info["users"].([]any); len(users) != 0 {
		t.Fatalf("unexpected users %v", users)
	}
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	join(t, alice, "room1", "alice")

	if err := alice.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	sendJSON(t, alice, map[string]any{"type": "ping", "timestamp": 9})
	frame := readFrame(t, alice)
	if frame["type"] != "pong" {
		t.Fatalf("connection closed after malformed frame: %v", frame)
	}
}

func TestDisconnectBroadcastsUserLeft(t *testing.T) {
	srv := newTestRelayServer(t)

	alice := dial(t, srv, "room1", "alice")
	join(t, alice, "room1", "alice")

	bob := dial(t, srv, "room1", "bob")
	join(t, bob, "room1", "bob")
	readFrame(t, alice) // user-joined bob

	_ = bob.Close()

	frame := readFrame(t, alice)
	if frame["type"] != "user-left" || frame["userId"] != "bob" {
		t.Fatalf("expected user-left bob, got %v", frame)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"offer","userId":"bob","offer":{"sdp":"x"},"timestamp":5}`)

	var env signaling.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != signaling.TypeOffer || env.UserID != "bob" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if string(env.Offer) != `{"sdp":"x"}` {
		t.Fatalf("offer payload = %s", env.Offer)
	}
}
