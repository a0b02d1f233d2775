package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrStrikeNotFound     = errors.New("strike not found")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrPriceUnavailable   = errors.New("price unavailable")
)

// MarketInfo is one binary market inside an event. StrikeLabel is the
// human-formatted strike ("78,000"); TokenIDs holds the instrument pair,
// index 0 for YES and index 1 for NO.
type MarketInfo struct {
	Slug        string
	Question    string
	StrikeLabel string
	TokenIDs    []string
}

type EventMarkets struct {
	EventSlug string
	Markets   []MarketInfo
}

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// GammaClient fetches event metadata from the market-metadata service.
type GammaClient interface {
	GetEventBySlug(ctx context.Context, slug string) (*EventMarkets, error)
}

// PriceClient fetches the current price of one instrument. The returned
// price is an implied probability in [0, 1].
type PriceClient interface {
	GetPrice(ctx context.Context, tokenID string, side Side) (decimal.Decimal, error)
}
