package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the matching module.
type Metrics struct {
	// Full scoring pass latency (resolve settings, list, score, sort)
	ScoreLatency prometheus.Histogram

	// Stack suggestion latency including the scoring pass
	StackLatency prometheus.Histogram

	// Candidates scored per request
	CandidatesScored prometheus.Histogram

	// Stack constraint hits by reason code
	ConstraintsHit *prometheus.CounterVec

	// Stack suggestions served
	Suggestions prometheus.Counter
}

// New creates a new Metrics instance with all matching module metrics registered.
func New() *Metrics {
	return &Metrics{
		ScoreLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "incentra_matching_score_duration_seconds",
			Help:    "Duration of a full scoring pass over the filtered catalog",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		StackLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "incentra_matching_stack_duration_seconds",
			Help:    "Duration of a stack suggestion including scoring",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		CandidatesScored: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "incentra_matching_candidates_scored",
			Help:    "Programs scored per matching request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		ConstraintsHit: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "incentra_matching_constraints_hit_total",
			Help: "Stack constraint hits by reason code",
		}, []string{"reason"}),

		Suggestions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "incentra_matching_suggestions_total",
			Help: "Stack suggestions served",
		}),
	}
}

// ObserveScoreLatency records the duration of a scoring pass.
func (m *Metrics) ObserveScoreLatency(d time.Duration) {
	if m != nil {
		m.ScoreLatency.Observe(d.Seconds())
	}
}

// ObserveStackLatency records the duration of a stack suggestion.
func (m *Metrics) ObserveStackLatency(d time.Duration) {
	if m != nil {
		m.StackLatency.Observe(d.Seconds())
	}
}

// ObserveCandidates records how many programs a request scored.
func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.CandidatesScored.Observe(float64(n))
	}
}

// IncrementConstraint records a stack constraint hit.
func (m *Metrics) IncrementConstraint(reason string) {
	if m != nil {
		m.ConstraintsHit.WithLabelValues(reason).Inc()
	}
}

// IncrementSuggestions records a served stack suggestion.
func (m *Metrics) IncrementSuggestions() {
	if m != nil {
		m.Suggestions.Inc()
	}
}
