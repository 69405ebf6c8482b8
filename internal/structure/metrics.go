package structure

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/nestedset/internal/engine"
)

// Outcome label values besides the lower-cased error codes.
const (
	OutcomeOK    = "ok"
	OutcomeNoOp  = "noop"
	OutcomeError = "error"
)

// Metrics records placement counts and latencies.
type Metrics struct {
	placements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the placement metrics with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		placements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nestedset",
				Name:      "placements_total",
				Help:      "Placement calls by verb and outcome.",
			},
			[]string{"verb", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nestedset",
				Name:      "placement_duration_seconds",
				Help:      "Placement latency by verb, including the transaction.",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"verb"},
		),
	}
}

func (m *Metrics) observe(verb, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(verb, outcome).Inc()
	m.duration.WithLabelValues(verb).Observe(elapsed.Seconds())
}

func outcomeOf(err error, noOp bool) string {
	switch {
	case err == nil && noOp:
		return OutcomeNoOp
	case err == nil:
		return OutcomeOK
	}
	if code := engine.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return OutcomeError
}
