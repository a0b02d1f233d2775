package db

import "time"

type userModel struct {
	ID             uint   `gorm:"primaryKey"`
	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Username       string `gorm:""`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type alertModel struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index:idx_alerts_user_active,priority:1;not null"`
	MarketRef   string `gorm:"not null"`
	Outcome     string `gorm:"not null"`
	TargetCents string `gorm:"not null"`
	Direction   string `gorm:"not null"`
	Active      bool   `gorm:"index:idx_alerts_user_active,priority:2"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
