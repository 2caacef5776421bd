// Package metrics exposes Prometheus collectors for chat exchanges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Exchange outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeRejected = "rejected"
	OutcomeBusy     = "busy"
)

// Metrics groups the collectors used by sessions and the HTTP server.
type Metrics struct {
	exchanges  *prometheus.CounterVec
	generation prometheus.Histogram
	clears     prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests usually want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolassist",
			Name:      "exchanges_total",
			Help:      "Chat exchanges by outcome.",
		}, []string{"outcome"}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "schoolassist",
			Name:      "generation_duration_seconds",
			Help:      "Time spent waiting for the language model.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "schoolassist",
			Name:      "clears_total",
			Help:      "Conversation resets.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.exchanges, m.generation, m.clears)
	}
	return m
}

// Exchange counts one send attempt with the given outcome.
func (m *Metrics) Exchange(outcome string) {
	if m == nil {
		return
	}
	m.exchanges.WithLabelValues(outcome).Inc()
}

// Generation records how long a generation call took.
func (m *Metrics) Generation(d time.Duration) {
	if m == nil {
		return
	}
	m.generation.Observe(d.Seconds())
}

// Clear counts a conversation reset.
func (m *Metrics) Clear() {
	if m == nil {
		return
	}
	m.clears.Inc()
}
