package metricsource

import (
	"context"
	"math/rand/v2"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/logger"
	"github.com/channelpulse/channelpulse-go/internal/telemetry"
)

// Simulator produces plausible randomized snapshots marked IsFallback.
// Given a seed snapshot it jitters around those values so a brief backend
// outage doesn't make the channel's numbers jump wildly.
type Simulator struct {
	// Rand overrides the random source for deterministic tests.
	Rand func() float64
}

func (s *Simulator) rand() float64 {
	if s.Rand != nil {
		return s.Rand()
	}
	return rand.Float64()
}

// Simulate generates a fallback snapshot, seeded from last when available.
func (s *Simulator) Simulate(last alerting.MetricSnapshot, haveLast bool) alerting.MetricSnapshot {
	if haveLast {
		return alerting.MetricSnapshot{
			GrowthRate:     jitter(last.GrowthRate, 0.2, s.rand),
			EngagementRate: jitter(last.EngagementRate, 0.2, s.rand),
			Subscribers:    last.Subscribers + int64(s.rand()*20),
			Views:          last.Views + int64(s.rand()*500),
			IsFallback:     true,
		}
	}
	return alerting.MetricSnapshot{
		GrowthRate:     s.rand() * 25,
		EngagementRate: s.rand() * 10,
		Subscribers:    int64(s.rand() * 5000),
		Views:          int64(s.rand() * 100000),
		IsFallback:     true,
	}
}

func jitter(v, spread float64, r func() float64) float64 {
	out := v * (1 + spread*(2*r()-1))
	if out < 0 {
		return 0
	}
	return out
}

// FallbackSource composes a live source with the simulator so that Fetch
// always yields a snapshot: on any live failure the simulator takes over
// and rule evaluation still runs every interval.
type FallbackSource struct {
	live *HTTPSource
	sim  *Simulator
	log  logger.Logger
	tel  *telemetry.Metrics
}

// NewFallbackSource wraps the live source with simulated fallback.
func NewFallbackSource(live *HTTPSource, sim *Simulator, log logger.Logger, tel *telemetry.Metrics) *FallbackSource {
	if sim == nil {
		sim = &Simulator{}
	}
	return &FallbackSource{live: live, sim: sim, log: log, tel: tel}
}

// Fetch never returns an error. Live failures are logged, counted, and
// replaced with a simulated snapshot seeded from the last known live one.
func (f *FallbackSource) Fetch(ctx context.Context, channelID string) (alerting.MetricSnapshot, error) {
	snap, err := f.live.Fetch(ctx, channelID)
	if err == nil {
		return snap, nil
	}

	f.tel.FetchFailed()
	f.log.Warn("live metric fetch failed, simulating snapshot",
		logger.String("channel_id", channelID),
		logger.Error(err))

	last, ok := f.live.LastKnown(channelID)
	return f.sim.Simulate(last, ok), nil
}
