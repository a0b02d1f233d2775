package db

import (
	"context"
	"fmt"

	"github.com/avolkov/polyalerts/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	model := alertModel{
		UserID:      alert.UserID,
		MarketRef:   alert.MarketRef,
		Outcome:     alert.Outcome,
		TargetCents: alert.TargetCents.String(),
		Direction:   string(alert.Direction),
		Active:      alert.Active,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	alert.ID = model.ID
	alert.CreatedAt = model.CreatedAt
	alert.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *AlertRepository) ListActiveByUser(ctx context.Context, userID uint) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models)
}

func (r *AlertRepository) ListAllActive(ctx context.Context) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models)
}

// Deactivate flips an active alert to inactive. An alert that is already
// inactive (or owned by someone else) yields domain.ErrNotFound.
func (r *AlertRepository) Deactivate(ctx context.Context, userID uint, alertID uint) error {
	result := r.db.WithContext(ctx).
		Model(&alertModel{}).
		Where("id = ? AND user_id = ? AND active = ?", alertID, userID, true).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapAlertsToDomain(models []alertModel) ([]domain.Alert, error) {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		target, err := decimal.NewFromString(model.TargetCents)
		if err != nil {
			return nil, fmt.Errorf("alert %d: bad target %q: %w", model.ID, model.TargetCents, err)
		}
		alerts = append(alerts, domain.Alert{
			ID:          model.ID,
			UserID:      model.UserID,
			MarketRef:   model.MarketRef,
			Outcome:     model.Outcome,
			TargetCents: target,
			Direction:   domain.Direction(model.Direction),
			Active:      model.Active,
			CreatedAt:   model.CreatedAt,
			UpdatedAt:   model.UpdatedAt,
		})
	}
	return alerts, nil
}
