package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/polyalerts/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type dialogStep int

const (
	stepAwaitURL dialogStep = iota
	stepAwaitOutcome
	stepAwaitPrice
)

type dialogSession struct {
	Step      dialogStep
	MarketRef string
	Outcome   string
}

const (
	promptURL     = "Creating a new alert.\n1/3: send a link to the Polymarket market."
	promptOutcome = "2/3: send the outcome, e.g. 82000 YES."
	promptPrice   = "3/3: send the target price in cents (48 means 0.48).\nPrefix with <= for an at-most alert, e.g. <= 40."

	msgBadPrice      = "Could not read that number. Send a price like 48 or 12.5."
	msgBadStrike     = "Could not find a strike in the outcome. Write it like: 82000 YES."
	msgBadMarket     = "Could not resolve that market. Check the link and try again."
	msgStrikeMissing = "This event has no market with that strike.\nCheck the number in the outcome (e.g. 78000, 82000) and send the price again."
	msgSaveFailed    = "Failed to save the alert. Please try again."
)

// DialogManager runs the per-user /add conversation. Sessions live in an
// expiring store so abandoned flows evaporate instead of accumulating.
type DialogManager struct {
	users    domain.UserRepository
	alerts   domain.AlertRepository
	resolver *Resolver
	sessions *gocache.Cache
	logger   *zap.Logger
}

func NewDialogManager(users domain.UserRepository, alerts domain.AlertRepository, resolver *Resolver, ttl time.Duration, logger *zap.Logger) *DialogManager {
	return &DialogManager{
		users:    users,
		alerts:   alerts,
		resolver: resolver,
		sessions: gocache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// Begin opens a fresh session for the user, discarding any in-progress
// one, and returns the first prompt.
func (m *DialogManager) Begin(telegramUserID int64) string {
	m.sessions.SetDefault(sessionKey(telegramUserID), &dialogSession{Step: stepAwaitURL})
	return promptURL
}

// Cancel discards the user's session, reporting whether one existed.
func (m *DialogManager) Cancel(telegramUserID int64) bool {
	key := sessionKey(telegramUserID)
	if _, ok := m.sessions.Get(key); !ok {
		return false
	}
	m.sessions.Delete(key)
	return true
}

// HandleMessage advances the user's session with one message. It returns
// handled=false when the user has no session, in which case the message
// belongs to someone else's routing.
func (m *DialogManager) HandleMessage(ctx context.Context, telegramUserID int64, text string) (string, bool) {
	key := sessionKey(telegramUserID)
	cached, ok := m.sessions.Get(key)
	if !ok {
		return "", false
	}
	session := cached.(*dialogSession)

	switch session.Step {
	case stepAwaitURL:
		session.MarketRef = strings.TrimSpace(text)
		session.Step = stepAwaitOutcome
		m.sessions.SetDefault(key, session)
		return promptOutcome, true

	case stepAwaitOutcome:
		session.Outcome = strings.TrimSpace(text)
		session.Step = stepAwaitPrice
		m.sessions.SetDefault(key, session)
		return promptPrice, true

	case stepAwaitPrice:
		return m.finishSession(ctx, telegramUserID, key, session, text), true
	}

	return "", false
}

// finishSession validates the collected alert and persists it. Every
// failure keeps the session at the price step so the user can retry.
func (m *DialogManager) finishSession(ctx context.Context, telegramUserID int64, key string, session *dialogSession, text string) string {
	target, direction, ok := parseTargetPrice(text)
	if !ok {
		return msgBadPrice
	}

	strike, _, ok := ParseOutcome(session.Outcome)
	if !ok {
		return msgBadStrike
	}

	slug, ok := ExtractEventSlug(session.MarketRef)
	if !ok {
		return msgBadMarket
	}

	event, err := m.resolver.ResolveEvent(ctx, slug)
	if err != nil {
		m.logger.Warn("alert validation: event resolution failed",
			zap.Int64("telegram_user_id", telegramUserID),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return msgBadMarket
	}

	if !m.resolver.StrikeExists(event, strike) {
		return msgStrikeMissing
	}

	user, err := m.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "Please /start to register first."
		}
		m.logger.Warn("alert validation: user lookup failed", zap.Int64("telegram_user_id", telegramUserID), zap.Error(err))
		return msgSaveFailed
	}

	alert := &domain.Alert{
		UserID:      user.ID,
		MarketRef:   session.MarketRef,
		Outcome:     session.Outcome,
		TargetCents: target,
		Direction:   direction,
		Active:      true,
	}
	if err := m.alerts.Create(ctx, alert); err != nil {
		m.logger.Warn("alert create failed", zap.Int64("telegram_user_id", telegramUserID), zap.Error(err))
		return msgSaveFailed
	}

	m.sessions.Delete(key)
	m.logger.Info("alert created",
		zap.Int64("telegram_user_id", telegramUserID),
		zap.Uint("alert_id", alert.ID),
		zap.String("market_ref", alert.MarketRef),
		zap.String("outcome", alert.Outcome),
		zap.String("target_cents", alert.TargetCents.String()),
		zap.String("direction", string(alert.Direction)),
	)

	return fmt.Sprintf(
		"Alert #%d created!\n\nMarket: %s\nOutcome: %s\nTriggers when price %s %sc",
		alert.ID, alert.MarketRef, alert.Outcome, alert.Direction, alert.TargetCents,
	)
}

// parseTargetPrice reads a price in cents, accepting both "." and ","
// as the decimal separator. An optional leading comparator selects the
// direction; a bare number means at-least.
func parseTargetPrice(input string) (decimal.Decimal, domain.Direction, bool) {
	text := strings.TrimSpace(input)
	direction := domain.DirectionAtLeast
	switch {
	case strings.HasPrefix(text, "<="):
		direction = domain.DirectionAtMost
		text = strings.TrimSpace(strings.TrimPrefix(text, "<="))
	case strings.HasPrefix(text, ">="):
		text = strings.TrimSpace(strings.TrimPrefix(text, ">="))
	}
	text = strings.ReplaceAll(text, ",", ".")
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, direction, false
	}
	return value, direction, true
}

func sessionKey(telegramUserID int64) string {
	return strconv.FormatInt(telegramUserID, 10)
}
