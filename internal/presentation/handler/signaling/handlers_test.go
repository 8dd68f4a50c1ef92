package signaling_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kendevco/discordant/internal/infrastructure/configs"
	"github.com/kendevco/discordant/internal/infrastructure/registry"
	infra "github.com/kendevco/discordant/internal/infrastructure/signaling"
	handler "github.com/kendevco/discordant/internal/presentation/handler/signaling"
)

// The connect URL carries roomId/userId hints that end up in the connection
// log line.
func TestConnectPassesURLHintsToRelay(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core).Sugar()

	reg := registry.New[*infra.Client]()
	relay := infra.NewRelay(reg, infra.Config{
		PongTimeout: 30 * time.Second,
	}, logger, infra.NewMetrics(prometheus.NewRegistry()))

	h := handler.NewHandler(relay, configs.SignalingConfig{}, logger)

	srv := httptest.NewServer(http.HandlerFunc(h.ConnectHandler))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?roomId=studio-7&userId=user-9"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries := logs.FilterMessage("signaling client connecting").All()
		if len(entries) > 0 {
			fields := entries[0].ContextMap()
			if fields["roomId"] != "studio-7" || fields["userId"] != "user-9" {
				t.Fatalf("connect hints = %v", fields)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("connection log line never appeared")
}
