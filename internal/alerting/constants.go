// Package alerting implements the real-time channel alerting engine:
// rule evaluation against metric snapshots, cooldown deduplication,
// server/local alert reconciliation, and the polling scheduler driving
// the whole cycle.
package alerting

import "time"

// Rule types identify which channel metric a rule watches.
const (
	RuleTypeGrowth      = "growth"
	RuleTypeEngagement  = "engagement"
	RuleTypeSubscribers = "subscribers"
	RuleTypeViews       = "views"
)

// Rule conditions define how the threshold is compared.
const (
	ConditionGreaterThan = "greater_than"
	ConditionLessThan    = "less_than"
	ConditionMilestone   = "milestone"
	ConditionSurge       = "surge"
)

const (
	// DefaultMaxAlerts caps the live alert collection.
	DefaultMaxAlerts = 50
	// DefaultCooldown is the minimum time between two alerts from the same rule.
	DefaultCooldown = 5 * time.Minute
	// DefaultCheckInterval is how often the scheduler runs a tick.
	DefaultCheckInterval = 30 * time.Second
	// DefaultSurgeProbability is the placeholder trigger rate of the
	// probabilistic view-surge detector.
	DefaultSurgeProbability = 0.3
)
