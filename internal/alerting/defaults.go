package alerting

// DefaultRules returns the built-in rule set used when no rules have been
// configured. The result is freshly constructed on every call, so callers
// can never mutate the defaults in place; editing a default rule goes
// through RuleSet.Add or RuleSet.Toggle and leaves this factory untouched.
func DefaultRules() []AlertRule {
	return []AlertRule{
		{
			ID:        "default-growth-spike",
			Name:      "Growth spike",
			Type:      RuleTypeGrowth,
			Condition: ConditionGreaterThan,
			Threshold: 15,
			Enabled:   true,
			Color:     "#22c55e",
			Icon:      "trending-up",
		},
		{
			ID:        "default-low-engagement",
			Name:      "Low engagement",
			Type:      RuleTypeEngagement,
			Condition: ConditionLessThan,
			Threshold: 3,
			Enabled:   true,
			Color:     "#f59e0b",
			Icon:      "activity",
		},
		{
			ID:        "default-subscriber-milestone",
			Name:      "Subscriber milestone",
			Type:      RuleTypeSubscribers,
			Condition: ConditionMilestone,
			Threshold: 1000,
			Enabled:   true,
			Color:     "#3b82f6",
			Icon:      "users",
		},
		{
			ID:        "default-view-surge",
			Name:      "View surge",
			Type:      RuleTypeViews,
			Condition: ConditionSurge,
			Threshold: 0,
			Enabled:   true,
			Color:     "#a855f7",
			Icon:      "eye",
		},
	}
}
