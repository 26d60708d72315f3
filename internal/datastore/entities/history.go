package entities

import "time"

// AlertHistory records each fired alert. AlertID is unique, so replaying
// the same firing (engine restart mid-tick) upserts instead of
// duplicating.
type AlertHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AlertID   string    `gorm:"size:128;uniqueIndex;not null" json:"alert_id"`
	RuleID    string    `gorm:"size:64;not null;index:idx_alert_history_rule_fired,priority:1" json:"rule_id"`
	Title     string    `gorm:"size:255;default:''" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	FiredAt   time.Time `gorm:"not null;index:idx_alert_history_rule_fired,priority:2" json:"fired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (AlertHistory) TableName() string {
	return "alert_history"
}
