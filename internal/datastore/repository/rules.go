// Package repository implements rule and history persistence over GORM.
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/datastore/entities"
)

// RuleRepository handles stored rule CRUD and fired-alert history. It
// satisfies both alerting.RuleStore and alerting.HistorySink.
type RuleRepository interface {
	ListRules(ctx context.Context) ([]alerting.AlertRule, error)
	SaveRule(ctx context.Context, rule alerting.AlertRule) error
	SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error
	DeleteRule(ctx context.Context, ruleID string) error
	SeedDefaults(ctx context.Context, defaults []alerting.AlertRule) (int, error)

	RecordFired(ctx context.Context, alert alerting.Alert) error
	ListHistory(ctx context.Context, limit int) ([]entities.AlertHistory, error)
	DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

type gormRuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a GORM-backed rule repository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &gormRuleRepository{db: db}
}

func (r *gormRuleRepository) ListRules(ctx context.Context) ([]alerting.AlertRule, error) {
	var stored []entities.StoredRule
	if err := r.db.WithContext(ctx).Order("created_at").Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	rules := make([]alerting.AlertRule, 0, len(stored))
	for i := range stored {
		rules = append(rules, stored[i].ToRule())
	}
	return rules, nil
}

func (r *gormRuleRepository) SaveRule(ctx context.Context, rule alerting.AlertRule) error {
	stored := entities.FromRule(rule)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&stored).Error
	if err != nil {
		return fmt.Errorf("saving rule %s: %w", rule.ID, err)
	}
	return nil
}

func (r *gormRuleRepository) SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error {
	err := r.db.WithContext(ctx).
		Model(&entities.StoredRule{}).
		Where("id = ?", ruleID).
		Update("enabled", enabled).Error
	if err != nil {
		return fmt.Errorf("toggling rule %s: %w", ruleID, err)
	}
	return nil
}

func (r *gormRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	err := r.db.WithContext(ctx).Delete(&entities.StoredRule{}, "id = ?", ruleID).Error
	if err != nil {
		return fmt.Errorf("deleting rule %s: %w", ruleID, err)
	}
	return nil
}

// SeedDefaults inserts any default rule not already present, keyed by ID,
// and returns how many were created. Partial seeds from a previous run
// self-heal on restart.
func (r *gormRuleRepository) SeedDefaults(ctx context.Context, defaults []alerting.AlertRule) (int, error) {
	created := 0
	for i := range defaults {
		stored := entities.FromRule(defaults[i])
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&stored)
		if res.Error != nil {
			return created, fmt.Errorf("seeding rule %s: %w", defaults[i].ID, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func (r *gormRuleRepository) RecordFired(ctx context.Context, alert alerting.Alert) error {
	h := entities.AlertHistory{
		AlertID: alert.ID,
		RuleID:  alert.RuleID,
		Title:   alert.Title,
		Message: alert.Message,
		FiredAt: alert.Timestamp,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "alert_id"}}, DoNothing: true}).
		Create(&h).Error
	if err != nil {
		return fmt.Errorf("recording fired alert %s: %w", alert.ID, err)
	}
	return nil
}

func (r *gormRuleRepository) ListHistory(ctx context.Context, limit int) ([]entities.AlertHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []entities.AlertHistory
	err := r.db.WithContext(ctx).
		Order("fired_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return out, nil
}

func (r *gormRuleRepository) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("fired_at < ?", before).
		Delete(&entities.AlertHistory{})
	if res.Error != nil {
		return 0, fmt.Errorf("pruning history: %w", res.Error)
	}
	return res.RowsAffected, nil
}
