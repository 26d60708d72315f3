package alerting

import "math/rand/v2"

// SurgeDetector decides whether the current snapshot represents a view
// surge. It is consulted at most once per enabled surge rule per tick.
type SurgeDetector interface {
	Detect(snapshot MetricSnapshot) bool
}

// ProbabilisticSurgeDetector is a placeholder policy standing in for a
// real anomaly-detection signal: it fires with a fixed probability per
// tick regardless of the snapshot. Replace with a genuine statistical
// surge test without changing the contract — it still produces
// zero-or-one trigger per tick.
type ProbabilisticSurgeDetector struct {
	Probability float64
	// Rand overrides the random source, for deterministic tests.
	// Nil uses the shared math/rand/v2 generator.
	Rand func() float64
}

// NewProbabilisticSurgeDetector returns a detector with the default
// trigger probability.
func NewProbabilisticSurgeDetector() *ProbabilisticSurgeDetector {
	return &ProbabilisticSurgeDetector{Probability: DefaultSurgeProbability}
}

func (d *ProbabilisticSurgeDetector) Detect(MetricSnapshot) bool {
	r := d.Rand
	if r == nil {
		r = rand.Float64
	}
	return r() < d.Probability
}
