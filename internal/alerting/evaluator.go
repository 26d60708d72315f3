package alerting

import (
	"fmt"
	"strconv"
	"time"
)

// Evaluate maps one metric snapshot and a rule list to zero or more
// candidate alerts. Pure apart from the injected surge detector: the same
// snapshot, rules, and clock always yield the same candidates. Disabled
// rules are skipped, each triggering rule yields exactly one candidate,
// and unrecognized (type, condition) pairs are silent no-ops so the rule
// schema stays open for future types.
func Evaluate(snapshot MetricSnapshot, rules []AlertRule, surge SurgeDetector, now time.Time) []Alert {
	var candidates []Alert
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}
		msg, ok := evaluateRule(rule, snapshot, surge)
		if !ok {
			continue
		}
		candidates = append(candidates, Alert{
			ID:        NewAlertID(rule.ID, now),
			RuleID:    rule.ID,
			Title:     rule.Name,
			Message:   msg,
			Timestamp: now,
		})
	}
	return candidates
}

func evaluateRule(rule *AlertRule, snapshot MetricSnapshot, surge SurgeDetector) (string, bool) {
	switch {
	case rule.Type == RuleTypeGrowth && rule.Condition == ConditionGreaterThan:
		if snapshot.GrowthRate > rule.Threshold {
			return fmt.Sprintf("Growth rate reached %s%% (threshold: %s%%)",
				formatNumber(snapshot.GrowthRate), formatNumber(rule.Threshold)), true
		}
	case rule.Type == RuleTypeEngagement && rule.Condition == ConditionLessThan:
		if snapshot.EngagementRate < rule.Threshold {
			return fmt.Sprintf("Engagement rate dropped to %s%% (threshold: %s%%)",
				formatNumber(snapshot.EngagementRate), formatNumber(rule.Threshold)), true
		}
	case rule.Type == RuleTypeSubscribers && rule.Condition == ConditionMilestone:
		if float64(snapshot.Subscribers) >= rule.Threshold {
			return fmt.Sprintf("Reached %d subscribers!", snapshot.Subscribers), true
		}
	case rule.Type == RuleTypeViews && rule.Condition == ConditionSurge:
		if surge != nil && surge.Detect(snapshot) {
			return fmt.Sprintf("View surge detected: %d views in last hour", snapshot.Views), true
		}
	}
	return "", false
}

// formatNumber renders thresholds and rates without trailing zeros, so a
// growth rate of 20.0 reads "20%" in alert messages.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
