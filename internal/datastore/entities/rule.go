// Package entities defines the persisted forms of alert rules and fired
// alert history.
package entities

import (
	"time"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
)

// StoredRule is the persisted form of an alerting.AlertRule, letting rule
// edits survive across sessions when a database is configured.
type StoredRule struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Condition string    `gorm:"size:20;not null" json:"condition"`
	Threshold float64   `gorm:"not null" json:"threshold"`
	Enabled   bool      `gorm:"not null;index" json:"enabled"`
	Color     string    `gorm:"size:16;default:''" json:"color"`
	Icon      string    `gorm:"size:32;default:''" json:"icon"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (StoredRule) TableName() string {
	return "alert_rules"
}

// FromRule converts a core rule to its persisted form.
func FromRule(r alerting.AlertRule) StoredRule {
	return StoredRule{
		ID:        r.ID,
		Name:      r.Name,
		Type:      r.Type,
		Condition: r.Condition,
		Threshold: r.Threshold,
		Enabled:   r.Enabled,
		Color:     r.Color,
		Icon:      r.Icon,
	}
}

// ToRule converts a persisted rule back to the core model.
func (s StoredRule) ToRule() alerting.AlertRule {
	return alerting.AlertRule{
		ID:        s.ID,
		Name:      s.Name,
		Type:      s.Type,
		Condition: s.Condition,
		Threshold: s.Threshold,
		Enabled:   s.Enabled,
		Color:     s.Color,
		Icon:      s.Icon,
	}
}
