package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the comparison an alert applies to the observed price.
type Direction string

const (
	DirectionAtLeast Direction = ">="
	DirectionAtMost  Direction = "<="
)

// Triggered reports whether currentCents satisfies the alert condition
// against targetCents.
func (d Direction) Triggered(currentCents, targetCents decimal.Decimal) bool {
	if d == DirectionAtMost {
		return currentCents.Cmp(targetCents) <= 0
	}
	return currentCents.Cmp(targetCents) >= 0
}

// Alert is a persisted price-threshold alert. TargetCents is in cents
// (48 means an implied probability of 0.48). An alert that turns
// inactive is terminal: it is never re-evaluated or reactivated.
type Alert struct {
	ID          uint
	UserID      uint
	MarketRef   string
	Outcome     string
	TargetCents decimal.Decimal
	Direction   Direction
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
