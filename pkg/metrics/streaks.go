package metrics

import "github.com/prometheus/client_golang/prometheus"

// StreakMetrics counts confirmation ledger activity.
type StreakMetrics struct {
	confirmations prometheus.Counter
}

// NewStreakMetrics registers the streak counters on the provided registerer.
func NewStreakMetrics(reg prometheus.Registerer) *StreakMetrics {
	if reg == nil {
		return &StreakMetrics{}
	}
	confirmations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streak_confirmations_total",
		Help: "Smoke-free day confirmations written to the ledger.",
	})
	reg.MustRegister(confirmations)
	return &StreakMetrics{confirmations: confirmations}
}

// IncConfirmation increments the confirmation counter.
func (m *StreakMetrics) IncConfirmation() {
	if m == nil || m.confirmations == nil {
		return
	}
	m.confirmations.Inc()
}
