package usecase

import (
	"context"
	"fmt"

	"github.com/avolkov/polyalerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier delivers a text message to a Telegram user.
type Notifier interface {
	Notify(telegramUserID int64, text string) error
}

var centsPerUnit = decimal.NewFromInt(100)

// Poller evaluates every active alert once per cycle. Each alert runs in
// its own failure boundary: a skipped alert stays active and is retried
// on the next cycle, and nothing an alert does can abort the rest of the
// cycle.
type Poller struct {
	users    domain.UserRepository
	alerts   domain.AlertRepository
	resolver *Resolver
	prices   domain.PriceClient
	notifier Notifier
	logger   *zap.Logger
}

func NewPoller(users domain.UserRepository, alerts domain.AlertRepository, resolver *Resolver, prices domain.PriceClient, notifier Notifier, logger *zap.Logger) *Poller {
	return &Poller{
		users:    users,
		alerts:   alerts,
		resolver: resolver,
		prices:   prices,
		notifier: notifier,
		logger:   logger,
	}
}

// RunCycle snapshots the active alerts once and walks the snapshot even
// if alerts change concurrently.
func (p *Poller) RunCycle(ctx context.Context) {
	alerts, err := p.alerts.ListAllActive(ctx)
	if err != nil {
		p.logger.Warn("poll cycle: listing active alerts failed", zap.Error(err))
		return
	}
	p.logger.Debug("poll cycle start", zap.Int("active_alerts", len(alerts)))

	for _, alert := range alerts {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.evaluate(ctx, alert)
	}
}

func (p *Poller) evaluate(ctx context.Context, alert domain.Alert) {
	slug, ok := ExtractEventSlug(alert.MarketRef)
	if !ok {
		p.logger.Warn("alert skipped: bad market link",
			zap.Uint("alert_id", alert.ID),
			zap.String("market_ref", alert.MarketRef),
		)
		return
	}

	event, err := p.resolver.ResolveEvent(ctx, slug)
	if err != nil {
		p.logger.Warn("alert skipped: event resolution failed",
			zap.Uint("alert_id", alert.ID),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return
	}

	tokenID, err := p.resolver.SelectInstrument(event, alert.Outcome)
	if err != nil {
		// A metadata gap does not delete user data; the alert stays
		// active and is retried next cycle.
		p.logger.Warn("alert skipped: instrument selection failed",
			zap.Uint("alert_id", alert.ID),
			zap.String("outcome", alert.Outcome),
			zap.Error(err),
		)
		return
	}

	price, err := p.prices.GetPrice(ctx, tokenID, domain.SideBuy)
	if err != nil {
		p.logger.Warn("alert skipped: price fetch failed",
			zap.Uint("alert_id", alert.ID),
			zap.String("token_id", tokenID),
			zap.Error(err),
		)
		return
	}

	currentCents := price.Mul(centsPerUnit)
	p.logger.Debug("alert evaluated",
		zap.Uint("alert_id", alert.ID),
		zap.String("current_cents", currentCents.StringFixed(2)),
		zap.String("target_cents", alert.TargetCents.String()),
		zap.String("direction", string(alert.Direction)),
	)

	if !alert.Direction.Triggered(currentCents, alert.TargetCents) {
		return
	}
	p.trigger(ctx, alert, currentCents)
}

// trigger notifies the owner and deactivates the alert. Deactivation
// happens regardless of delivery: a lost notification must not leave
// the alert re-triggering every cycle.
func (p *Poller) trigger(ctx context.Context, alert domain.Alert, currentCents decimal.Decimal) {
	user, err := p.users.GetByID(ctx, alert.UserID)
	if err != nil {
		p.logger.Warn("alert trigger: owner lookup failed",
			zap.Uint("alert_id", alert.ID),
			zap.Uint("user_id", alert.UserID),
			zap.Error(err),
		)
		return
	}

	text := fmt.Sprintf(
		"Alert #%d triggered!\n\nMarket: %s\nOutcome: %s\nTarget: %s %sc\nCurrent price: %sc",
		alert.ID,
		alert.MarketRef,
		alert.Outcome,
		alert.Direction,
		alert.TargetCents,
		currentCents.StringFixed(2),
	)
	if err := p.notifier.Notify(user.TelegramUserID, text); err != nil {
		p.logger.Warn("alert delivery failed",
			zap.Uint("alert_id", alert.ID),
			zap.Int64("telegram_user_id", user.TelegramUserID),
			zap.Error(err),
		)
	}

	if err := p.alerts.Deactivate(ctx, alert.UserID, alert.ID); err != nil {
		p.logger.Error("failed to deactivate triggered alert",
			zap.Uint("alert_id", alert.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("alert triggered",
		zap.Uint("alert_id", alert.ID),
		zap.Int64("telegram_user_id", user.TelegramUserID),
		zap.String("current_cents", currentCents.StringFixed(2)),
	)
}
