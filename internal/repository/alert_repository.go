package repository

import (
	"context"

	"gorm.io/gorm"

	"powereye/internal/model"
)

// MaxAlertsListed caps the alert feed.
const MaxAlertsListed = 50

// AlertRepository defines alert persistence operations.
type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	ListRecent(ctx context.Context, limit int) ([]model.AlertWithMachine, error)
	Resolve(ctx context.Context, id uint) (bool, error)
	CountOpenBySeverity(ctx context.Context) (map[string]int64, error)
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// Create creates a new alert.
func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// ListRecent returns the newest alerts joined with their machine name.
func (r *alertRepository) ListRecent(ctx context.Context, limit int) ([]model.AlertWithMachine, error) {
	if limit <= 0 || limit > MaxAlertsListed {
		limit = MaxAlertsListed
	}

	alerts := []model.AlertWithMachine{}
	err := r.db.WithContext(ctx).Table("alerts AS a").
		Select("a.id, a.machine_id, a.alert_type, a.severity, a.message, a.resolved, a.created_at, m.name AS machine_name").
		Joins("JOIN machines m ON a.machine_id = m.id").
		Order("a.created_at DESC").
		Order("a.id DESC").
		Limit(limit).
		Scan(&alerts).Error
	if err != nil {
		return nil, err
	}

	for i := range alerts {
		alerts[i].Machine = alerts[i].MachineName
	}
	return alerts, nil
}

// Resolve flags the alert as resolved. It reports whether the alert exists.
func (r *alertRepository) Resolve(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Alert{}).Where("id = ?", id).Update("resolved", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountOpenBySeverity returns unresolved alert counts per severity.
func (r *alertRepository) CountOpenBySeverity(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Severity string
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Alert{}).
		Select("severity, COUNT(*) AS total").
		Where("resolved = ?", false).
		Group("severity").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Severity] = row.Total
	}
	return counts, nil
}
