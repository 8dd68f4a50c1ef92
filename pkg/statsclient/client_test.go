package statsclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kendevco/discordant/internal/infrastructure/registry"
	"github.com/kendevco/discordant/internal/infrastructure/signaling"
	"github.com/kendevco/discordant/pkg/statsclient"
)

func newRelayServer(t *testing.T) string {
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
		relay.ServeConn(conn, "", "")
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestPingProducesRTTSamples(t *testing.T) {
	url := newRelayServer(t)

	client, err := statsclient.Dial(context.Background(), statsclient.Config{
		URL:          url,
		RoomID:       "studio-1",
		UserID:       "user-a",
		PingInterval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if client.RTT().Samples >= 3 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	stats := client.RTT()
	if stats.Samples < 3 {
		t.Fatalf("got %d samples, want at least 3", stats.Samples)
	}
	if stats.Min < 0 || stats.Max < stats.Min {
		t.Fatalf("inconsistent aggregate: %+v", stats)
	}
	if stats.EWMA < 0 {
		t.Fatalf("negative EWMA: %v", stats.EWMA)
	}
}

func TestStatsReachPeers(t *testing.T) {
	url := newRelayServer(t)

	publisher, err := statsclient.Dial(context.Background(), statsclient.Config{
		URL:    url,
		RoomID: "studio-1",
		UserID: "user-a",
	})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer publisher.Close()

	var (
		mu       sync.Mutex
		fromUser string
		payload  json.RawMessage
	)
	received := make(chan struct{}, 1)

	subscriber, err := statsclient.Dial(context.Background(), statsclient.Config{
		URL:    url,
		RoomID: "studio-1",
		UserID: "user-b",
	})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer subscriber.Close()
	subscriber.OnStatsUpdate(func(userID string, stats json.RawMessage) {
		mu.Lock()
		fromUser = userID
		payload = stats
		mu.Unlock()
		select {
		case received <- struct{}{}:
		default:
		}
	})

	// Give the subscriber's join time to land before publishing.
	time.Sleep(100 * time.Millisecond)

	if err := publisher.PublishStats(map[string]any{"bitrate": 256000}); err != nil {
		t.Fatalf("PublishStats failed: %v", err)
	}

	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("stats-update never arrived")
	}

	mu.Lock()
	defer mu.Unlock()
	if fromUser != "user-a" {
		t.Fatalf("stats attributed to %q", fromUser)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("stats payload did not round-trip: %v", err)
	}
	if decoded["bitrate"] != float64(256000) {
		t.Fatalf("bitrate = %v", decoded["bitrate"])
	}
}
