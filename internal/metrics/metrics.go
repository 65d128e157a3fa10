package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeScored   = "scored"
	OutcomeNeutral  = "neutral"
	OutcomeRejected = "rejected"
)

// Metrics exposes Prometheus collectors for quiz activity.
type Metrics struct {
	submissions    *prometheus.CounterVec
	types          *prometheus.CounterVec
	selectionCache *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	archived       prometheus.Counter
}

// MustNewMetrics registers the collectors with reg and panics on a
// registration error, mirroring promauto.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typequiz",
				Name:      "submissions_total",
				Help:      "Quiz submissions by outcome.",
			},
			[]string{"outcome"},
		),
		types: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typequiz",
				Name:      "types_total",
				Help:      "Resolved personality types.",
			},
			[]string{"type"},
		),
		selectionCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typequiz",
				Name:      "selection_cache_total",
				Help:      "Question selection cache lookups by result.",
			},
			[]string{"result"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typequiz",
				Name:      "store_errors_total",
				Help:      "Failed result store operations.",
			},
			[]string{"op"},
		),
		archived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "typequiz",
				Name:      "archived_results_total",
				Help:      "Results written to the PostgreSQL archive.",
			},
		),
	}

	reg.MustRegister(m.submissions, m.types, m.selectionCache, m.storeErrors, m.archived)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveSubmission records one submission outcome and, for scored ones,
// the resolved type.
func (m *Metrics) ObserveSubmission(outcome, personalityType string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if personalityType != "" {
		m.types.WithLabelValues(personalityType).Inc()
	}
}

// ObserveSelectionCache records a cache hit or miss.
func (m *Metrics) ObserveSelectionCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.selectionCache.WithLabelValues(result).Inc()
}

// IncStoreError counts a failed store operation.
func (m *Metrics) IncStoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// AddArchived counts results written to the archive.
func (m *Metrics) AddArchived(n int) {
	if m == nil {
		return
	}
	m.archived.Add(float64(n))
}
