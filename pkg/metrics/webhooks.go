package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics counts billing webhook deliveries by provider and outcome.
type WebhookMetrics struct {
	events   *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_webhook_events_total",
		Help: "Processed billing webhook events by provider and outcome.",
	}, []string{"provider", "outcome"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_webhook_rejected_total",
		Help: "Billing webhook deliveries rejected before processing.",
	}, []string{"provider", "reason"})
	reg.MustRegister(events, rejected)
	return &WebhookMetrics{events: events, rejected: rejected}
}

// IncEvent increments the processed-event counter.
func (m *WebhookMetrics) IncEvent(provider, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
}

// IncRejected increments the rejected-delivery counter.
func (m *WebhookMetrics) IncRejected(provider, reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(provider), normalizeLabel(reason)).Inc()
}
