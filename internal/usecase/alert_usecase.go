package usecase

import (
	"context"
	"errors"

	"github.com/avolkov/polyalerts/internal/domain"
)

var (
	ErrUserNotRegistered = errors.New("user not registered")
	ErrAlertNotFound     = errors.New("alert not found")
)

// AlertUsecase serves the user-facing alert commands: listing active
// alerts and deactivating one. Creation goes through the DialogManager.
type AlertUsecase struct {
	users  domain.UserRepository
	alerts domain.AlertRepository
}

func NewAlertUsecase(users domain.UserRepository, alerts domain.AlertRepository) *AlertUsecase {
	return &AlertUsecase{users: users, alerts: alerts}
}

func (u *AlertUsecase) ListAlerts(ctx context.Context, telegramUserID int64) ([]domain.Alert, error) {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}
	return u.alerts.ListActiveByUser(ctx, user.ID)
}

// DeleteAlert deactivates one of the user's alerts. The record stays in
// the store for history; an already-inactive or foreign alert yields
// ErrAlertNotFound.
func (u *AlertUsecase) DeleteAlert(ctx context.Context, telegramUserID int64, alertID uint) error {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotRegistered
		}
		return err
	}

	if err := u.alerts.Deactivate(ctx, user.ID, alertID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	return nil
}
