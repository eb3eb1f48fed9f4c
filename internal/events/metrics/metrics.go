package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the outbox relay.
type Metrics struct {
	// Events appended to the outbox by type
	Appended *prometheus.CounterVec

	// Events delivered to the broker by type
	Published *prometheus.CounterVec

	// Relay drain failures
	RelayErrors prometheus.Counter

	// Outbox rows awaiting delivery, sampled each drain
	Pending prometheus.Gauge
}

// New creates a new Metrics instance with all relay metrics registered.
func New() *Metrics {
	return &Metrics{
		Appended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "incentra_outbox_appended_total",
			Help: "Total events appended to the outbox by type",
		}, []string{"type"}),

		Published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "incentra_outbox_published_total",
			Help: "Total events delivered to the broker by type",
		}, []string{"type"}),

		RelayErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "incentra_outbox_relay_errors_total",
			Help: "Total relay drain failures",
		}),

		Pending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "incentra_outbox_pending",
			Help: "Outbox rows awaiting delivery as of the last drain",
		}),
	}
}

// IncrementAppended records an event appended to the outbox.
func (m *Metrics) IncrementAppended(eventType string) {
	if m != nil {
		m.Appended.WithLabelValues(eventType).Inc()
	}
}

// IncrementPublished records an event delivered to the broker.
func (m *Metrics) IncrementPublished(eventType string) {
	if m != nil {
		m.Published.WithLabelValues(eventType).Inc()
	}
}

// IncrementRelayError records a failed drain pass.
func (m *Metrics) IncrementRelayError() {
	if m != nil {
		m.RelayErrors.Inc()
	}
}

// SetPending records the outbox backlog size.
func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.Pending.Set(float64(n))
	}
}
