package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes, one terminal state per request.
const (
	outcomeSyncSucceeded     = "sync_succeeded"
	outcomeSyncFailed        = "sync_failed"
	outcomeAsyncDelegated    = "async_delegated"
	outcomeFallbackSucceeded = "fallback_succeeded"
	outcomeFallbackFailed    = "fallback_failed"
	outcomeAsIs              = "as_is"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	fallbacks prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_requests_total",
			Help: "System-message requests by workflow id and terminal outcome.",
		}, []string{"workflow", "outcome"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "orchestrator_fallbacks_total",
			Help: "Async dispatches that fell back to the local completion provider.",
		}),
	}
}

func (m *Metrics) observe(workflowID, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(workflowID, outcome).Inc()
}
