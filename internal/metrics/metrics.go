package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once           sync.Once
	lifecycleState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lumen",
			Subsystem: "lifecycle",
			Name:      "state",
			Help:      "Lifecycle state gauge (1 for the current state).",
		},
		[]string{"state"},
	)
	restartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Subsystem: "lifecycle",
			Name:      "restarts_total",
			Help:      "Restart requests accepted by the controller.",
		},
	)
)

// initRegistry registers metrics once.
func init() {
	once.Do(func() {
		prometheus.MustRegister(lifecycleState, restartsTotal, selfCPU, selfRSS)
	})
}

// ObserveState marks the given lifecycle state as current. States are
// monotonic, so the previous state's gauge is cleared.
func ObserveState(state string) {
	lifecycleState.Reset()
	lifecycleState.WithLabelValues(state).Set(1)
}

// IncRestarts counts an accepted restart request.
func IncRestarts() { restartsTotal.Inc() }
