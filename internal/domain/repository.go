package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramUserID int64) (*User, error)
	GetByID(ctx context.Context, userID uint) (*User, error)
	Create(ctx context.Context, user *User) error
}

// AlertRepository persists alerts. Alerts are never physically deleted;
// Deactivate flips the active flag and reports ErrNotFound when no
// active alert matched, which makes it idempotent.
type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	ListActiveByUser(ctx context.Context, userID uint) ([]Alert, error)
	Deactivate(ctx context.Context, userID uint, alertID uint) error
	ListAllActive(ctx context.Context) ([]Alert, error)
}
