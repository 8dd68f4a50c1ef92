package signaling

import "github.com/prometheus/client_golang/prometheus"

// Metrics defines our Prometheus metrics for the relay.
type Metrics struct {
	activeConnections prometheus.Gauge
	activeRooms       prometheus.Gauge
	relayedFrames     *prometheus.CounterVec
	droppedFrames     *prometheus.CounterVec
	joins             prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_connections",
			Help: "Number of live signaling connections.",
		}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_rooms",
			Help: "Number of rooms with at least one member.",
		}),
		relayedFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaling_relayed_frames_total",
			Help: "Frames relayed or broadcast, by message type.",
		}, []string{"type"}),
		droppedFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaling_dropped_frames_total",
			Help: "Frames dropped because the target was gone or its buffer was full.",
		}, []string{"reason"}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_joins_total",
			Help: "Successful room joins.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.activeConnections, m.activeRooms, m.relayedFrames, m.droppedFrames, m.joins)
	}

	return m
}
