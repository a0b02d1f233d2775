package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/avolkov/polyalerts/internal/domain"
	"go.uber.org/zap"
)

func newTestDialog(t *testing.T, gamma *fakeGamma) (*DialogManager, *fakeUserRepo, *fakeAlertRepo) {
	t.Helper()
	users := newFakeUserRepo()
	alerts := &fakeAlertRepo{}
	resolver := NewResolver(gamma, 0)
	dialog := NewDialogManager(users, alerts, resolver, time.Minute, zap.NewNop())
	return dialog, users, alerts
}

func registerUser(t *testing.T, users *fakeUserRepo, telegramUserID int64) {
	t.Helper()
	if err := users.Create(context.Background(), &domain.User{TelegramUserID: telegramUserID}); err != nil {
		t.Fatalf("register user: %v", err)
	}
}

func TestDialogCreatesAlert(t *testing.T) {
	ctx := context.Background()
	dialog, users, alerts := newTestDialog(t, &fakeGamma{event: btcEvent()})
	registerUser(t, users, 100)

	if got := dialog.Begin(100); got != promptURL {
		t.Fatalf("Begin = %q, want %q", got, promptURL)
	}

	reply, handled := dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/bitcoin-above-on-december-12/bitcoin-above-82k")
	if !handled || reply != promptOutcome {
		t.Fatalf("url step = (%q, %v)", reply, handled)
	}

	reply, handled = dialog.HandleMessage(ctx, 100, "82000 YES")
	if !handled || reply != promptPrice {
		t.Fatalf("outcome step = (%q, %v)", reply, handled)
	}

	reply, handled = dialog.HandleMessage(ctx, 100, "48")
	if !handled || !strings.Contains(reply, "Alert #1 created") {
		t.Fatalf("price step = (%q, %v)", reply, handled)
	}

	if len(alerts.alerts) != 1 {
		t.Fatalf("expected 1 persisted alert, got %d", len(alerts.alerts))
	}
	alert := alerts.alerts[0]
	if alert.MarketRef != "https://polymarket.com/event/bitcoin-above-on-december-12/bitcoin-above-82k" {
		t.Fatalf("market ref = %q", alert.MarketRef)
	}
	if alert.Outcome != "82000 YES" {
		t.Fatalf("outcome = %q", alert.Outcome)
	}
	if alert.TargetCents.String() != "48" {
		t.Fatalf("target = %s, want 48", alert.TargetCents)
	}
	if alert.Direction != domain.DirectionAtLeast {
		t.Fatalf("direction = %q, want at-least", alert.Direction)
	}
	if !alert.Active {
		t.Fatalf("expected alert to be active")
	}

	// Session is cleared: the next plain message is not for the dialog.
	if _, handled := dialog.HandleMessage(ctx, 100, "anything"); handled {
		t.Fatalf("expected session to be cleared after creation")
	}
}

func TestDialogMissingStrikeKeepsPriceStep(t *testing.T) {
	ctx := context.Background()
	event := &domain.EventMarkets{Markets: []domain.MarketInfo{
		{StrikeLabel: "78,000", TokenIDs: []string{"yes-78", "no-78"}},
	}}
	dialog, users, alerts := newTestDialog(t, &fakeGamma{event: event})
	registerUser(t, users, 100)

	dialog.Begin(100)
	dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/bitcoin-above-on-december-12")
	dialog.HandleMessage(ctx, 100, "82000 YES")

	reply, handled := dialog.HandleMessage(ctx, 100, "48")
	if !handled || reply != msgStrikeMissing {
		t.Fatalf("missing strike reply = (%q, %v)", reply, handled)
	}
	if len(alerts.alerts) != 0 {
		t.Fatalf("expected no alert, got %d", len(alerts.alerts))
	}

	// Still at the price step: another price retries validation.
	reply, handled = dialog.HandleMessage(ctx, 100, "55")
	if !handled || reply != msgStrikeMissing {
		t.Fatalf("retry reply = (%q, %v)", reply, handled)
	}
}

func TestDialogBadPriceReprompts(t *testing.T) {
	ctx := context.Background()
	dialog, users, alerts := newTestDialog(t, &fakeGamma{event: btcEvent()})
	registerUser(t, users, 100)

	dialog.Begin(100)
	dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/bitcoin-above-on-december-12")
	dialog.HandleMessage(ctx, 100, "82000 YES")

	reply, handled := dialog.HandleMessage(ctx, 100, "not a number")
	if !handled || reply != msgBadPrice {
		t.Fatalf("bad price reply = (%q, %v)", reply, handled)
	}
	if len(alerts.alerts) != 0 {
		t.Fatalf("expected no alert after bad price")
	}

	// Comma decimal separator is accepted on retry.
	reply, handled = dialog.HandleMessage(ctx, 100, "12,5")
	if !handled || !strings.Contains(reply, "created") {
		t.Fatalf("comma decimal reply = (%q, %v)", reply, handled)
	}
	if got := alerts.alerts[0].TargetCents.String(); got != "12.5" {
		t.Fatalf("target = %s, want 12.5", got)
	}
}

func TestDialogComparatorPrefixSetsDirection(t *testing.T) {
	ctx := context.Background()
	dialog, users, alerts := newTestDialog(t, &fakeGamma{event: btcEvent()})
	registerUser(t, users, 100)

	dialog.Begin(100)
	dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/bitcoin-above-on-december-12")
	dialog.HandleMessage(ctx, 100, "82000 NO")

	reply, handled := dialog.HandleMessage(ctx, 100, "<= 40")
	if !handled || !strings.Contains(reply, "created") {
		t.Fatalf("comparator reply = (%q, %v)", reply, handled)
	}
	if alerts.alerts[0].Direction != domain.DirectionAtMost {
		t.Fatalf("direction = %q, want at-most", alerts.alerts[0].Direction)
	}
	if alerts.alerts[0].TargetCents.String() != "40" {
		t.Fatalf("target = %s, want 40", alerts.alerts[0].TargetCents)
	}
}

func TestDialogBadOutcomeStrikeKeepsPriceStep(t *testing.T) {
	ctx := context.Background()
	dialog, users, _ := newTestDialog(t, &fakeGamma{event: btcEvent()})
	registerUser(t, users, 100)

	dialog.Begin(100)
	dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/bitcoin-above-on-december-12")
	dialog.HandleMessage(ctx, 100, "to the moon")

	reply, handled := dialog.HandleMessage(ctx, 100, "48")
	if !handled || reply != msgBadStrike {
		t.Fatalf("bad outcome reply = (%q, %v)", reply, handled)
	}
}

func TestDialogResolutionFailureKeepsPriceStep(t *testing.T) {
	ctx := context.Background()
	dialog, users, alerts := newTestDialog(t, &fakeGamma{err: domain.ErrEventNotFound})
	registerUser(t, users, 100)

	dialog.Begin(100)
	dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/unknown-event")
	dialog.HandleMessage(ctx, 100, "82000 YES")

	reply, handled := dialog.HandleMessage(ctx, 100, "48")
	if !handled || reply != msgBadMarket {
		t.Fatalf("resolution failure reply = (%q, %v)", reply, handled)
	}
	if len(alerts.alerts) != 0 {
		t.Fatalf("expected no alert on resolution failure")
	}
}

func TestDialogBeginOverwritesSession(t *testing.T) {
	ctx := context.Background()
	dialog, users, _ := newTestDialog(t, &fakeGamma{event: btcEvent()})
	registerUser(t, users, 100)

	dialog.Begin(100)
	dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/bitcoin-above-on-december-12")

	// A fresh /add restarts from the URL step.
	dialog.Begin(100)
	reply, handled := dialog.HandleMessage(ctx, 100, "https://polymarket.com/event/other-event")
	if !handled || reply != promptOutcome {
		t.Fatalf("after restart = (%q, %v)", reply, handled)
	}
}

func TestDialogCancel(t *testing.T) {
	ctx := context.Background()
	dialog, users, _ := newTestDialog(t, &fakeGamma{event: btcEvent()})
	registerUser(t, users, 100)

	if dialog.Cancel(100) {
		t.Fatalf("Cancel with no session should report false")
	}
	dialog.Begin(100)
	if !dialog.Cancel(100) {
		t.Fatalf("Cancel with a session should report true")
	}
	if _, handled := dialog.HandleMessage(ctx, 100, "text"); handled {
		t.Fatalf("expected no session after cancel")
	}
}

func TestDialogIgnoresUsersWithoutSession(t *testing.T) {
	dialog, _, _ := newTestDialog(t, &fakeGamma{event: btcEvent()})
	if _, handled := dialog.HandleMessage(context.Background(), 999, "hello"); handled {
		t.Fatalf("message without session must not be handled")
	}
}
