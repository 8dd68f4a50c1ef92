package signaling

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kendevco/discordant/internal/infrastructure/registry"
)

// A peer whose send buffer is full must lose frames, never stall the
// broadcaster or the rest of the room. Neither client here runs a write
// pump, so buffers drain only as far as their capacity allows.
func TestBroadcastDropsForSaturatedPeerWithoutBlocking(t *testing.T) {
	reg := registry.New[*Client]()
	relay := NewRelay(reg, Config{}, zap.NewNop().Sugar(), NewMetrics(prometheus.NewRegistry()))

	stalled := newClient(nil, "stalled", 2)
	healthy := newClient(nil, "healthy", 16)

	reg.Join(stalled, registry.Session{RoomID: "studio-1", UserID: "user-a"})
	reg.Join(healthy, registry.Session{RoomID: "studio-1", UserID: "user-b"})

	const frames = 10

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < frames; i++ {
			relay.broadcast("studio-1", nil, i, TypeStatsUpdate)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a saturated peer")
	}

	if got := len(stalled.send); got != 2 {
		t.Fatalf("stalled peer buffered %d frames, want its capacity of 2", got)
	}
	if got := len(healthy.send); got != frames {
		t.Fatalf("healthy peer received %d frames, want %d", got, frames)
	}

	dropped := testutil.ToFloat64(relay.metrics.droppedFrames.WithLabelValues("buffer_full"))
	if dropped != frames-2 {
		t.Fatalf("dropped counter = %v, want %d", dropped, frames-2)
	}
}

// A closed client refuses frames immediately even with buffer space left.
func TestTrySendRefusesAfterClose(t *testing.T) {
	client := newClient(nil, "closed", 4)
	client.closeOnce.Do(func() { close(client.done) })

	if client.trySend("frame") {
		t.Fatal("trySend accepted a frame for a closed client")
	}
	if got := len(client.send); got != 0 {
		t.Fatalf("closed client buffered %d frames", got)
	}
}
