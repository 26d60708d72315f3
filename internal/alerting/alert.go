package alerting

import (
	"fmt"
	"time"
)

// AlertRule is a user-configurable threshold or milestone rule.
// ID is immutable once created. Color and Icon are presentation metadata
// carried through for UI consumers; the engine never interprets them.
type AlertRule struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Condition string  `json:"condition"`
	Threshold float64 `json:"threshold"`
	Enabled   bool    `json:"enabled"`
	Color     string  `json:"color,omitempty"`
	Icon      string  `json:"icon,omitempty"`
}

// MetricSnapshot is one sample of current channel metrics. Produced fresh
// on every polling tick and never mutated; only derived alerts persist.
type MetricSnapshot struct {
	GrowthRate     float64 `json:"growthRate"`
	EngagementRate float64 `json:"engagementRate"`
	Subscribers    int64   `json:"subscribers"`
	Views          int64   `json:"views"`
	// IsFallback marks snapshots produced by the simulated fallback path
	// rather than the live metric source.
	IsFallback bool `json:"isFallback"`
}

// Alert is one fired rule occurrence. RuleID is a weak back-reference used
// for cooldown lookups, never for ownership.
type Alert struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"ruleId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// NewAlertID builds a deterministic alert ID from the rule and generation
// time. A rule fires at most once per tick, so millisecond resolution is
// collision-free within a collection.
func NewAlertID(ruleID string, ts time.Time) string {
	return fmt.Sprintf("%s-%d", ruleID, ts.UnixMilli())
}

// AlertCollection is an ordered, most-recent-first sequence of alerts,
// unique by ID and capped at the configured maximum. It is treated as an
// immutable value: every mutation produces a new collection, so consumers
// holding a stale snapshot never observe a partial update.
type AlertCollection []Alert

// UnreadCount is derived, never stored.
func (c AlertCollection) UnreadCount() int {
	n := 0
	for i := range c {
		if !c[i].Read {
			n++
		}
	}
	return n
}
