// Package telemetry exposes engine counters via prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the alerting engine's operational counters. All
// increment methods are safe on a nil receiver so callers can run without
// telemetry wired (tests, library use).
type Metrics struct {
	ticksTotal       prometheus.Counter
	ticksSkipped     prometheus.Counter
	candidatesTotal  prometheus.Counter
	alertsFired      prometheus.Counter
	alertsSuppressed prometheus.Counter
	fetchFailures    prometheus.Counter
	fallbackSamples  prometheus.Counter
}

// NewMetrics registers the engine counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_ticks_total",
			Help: "Polling cycles executed.",
		}),
		ticksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_ticks_skipped_total",
			Help: "Timer firings skipped because a tick was still in flight.",
		}),
		candidatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_candidates_total",
			Help: "Candidate alerts produced by rule evaluation.",
		}),
		alertsFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_alerts_fired_total",
			Help: "Alerts that survived cooldown deduplication.",
		}),
		alertsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_alerts_suppressed_total",
			Help: "Candidate alerts suppressed by the cooldown window.",
		}),
		fetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_fetch_failures_total",
			Help: "Metric or alert fetches that failed and fell back.",
		}),
		fallbackSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "channelpulse_fallback_snapshots_total",
			Help: "Ticks evaluated against a simulated fallback snapshot.",
		}),
	}
}

func (m *Metrics) TickExecuted() {
	if m != nil {
		m.ticksTotal.Inc()
	}
}

func (m *Metrics) TickSkipped() {
	if m != nil {
		m.ticksSkipped.Inc()
	}
}

func (m *Metrics) CandidatesEvaluated(n int) {
	if m != nil && n > 0 {
		m.candidatesTotal.Add(float64(n))
	}
}

func (m *Metrics) AlertsFired(n int) {
	if m != nil && n > 0 {
		m.alertsFired.Add(float64(n))
	}
}

func (m *Metrics) AlertsSuppressed(n int) {
	if m != nil && n > 0 {
		m.alertsSuppressed.Add(float64(n))
	}
}

func (m *Metrics) FetchFailed() {
	if m != nil {
		m.fetchFailures.Inc()
	}
}

func (m *Metrics) FallbackSnapshot() {
	if m != nil {
		m.fallbackSamples.Inc()
	}
}
