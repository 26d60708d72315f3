package alerting

// Schema describes the catalog of metric types and conditions available to
// rule-builder UIs.
type Schema struct {
	Types      []MetricTypeSchema `json:"types"`
	Conditions []ConditionSchema  `json:"conditions"`
}

// MetricTypeSchema describes one rule type and the conditions it supports.
type MetricTypeSchema struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Unit       string   `json:"unit"`
	Conditions []string `json:"conditions"`
}

// ConditionSchema describes a condition for the UI.
type ConditionSchema struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	// Thresholdless marks conditions that ignore the threshold field.
	Thresholdless bool `json:"thresholdless,omitempty"`
}

// GetSchema returns the full rule-builder catalog. Pairs outside this
// catalog are accepted by the engine but never trigger.
func GetSchema() Schema {
	return Schema{
		Types: []MetricTypeSchema{
			{Name: RuleTypeGrowth, Label: "Growth Rate", Unit: "%", Conditions: []string{ConditionGreaterThan}},
			{Name: RuleTypeEngagement, Label: "Engagement Rate", Unit: "%", Conditions: []string{ConditionLessThan}},
			{Name: RuleTypeSubscribers, Label: "Subscribers", Unit: "count", Conditions: []string{ConditionMilestone}},
			{Name: RuleTypeViews, Label: "Views", Unit: "count", Conditions: []string{ConditionSurge}},
		},
		Conditions: []ConditionSchema{
			{Name: ConditionGreaterThan, Label: "greater than"},
			{Name: ConditionLessThan, Label: "less than"},
			{Name: ConditionMilestone, Label: "reaches milestone"},
			{Name: ConditionSurge, Label: "surge detected", Thresholdless: true},
		},
	}
}
