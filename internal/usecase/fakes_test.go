package usecase

import (
	"context"

	"github.com/avolkov/polyalerts/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramUserID int64) (*domain.User, error) {
	user, ok := r.users[telegramUserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uint) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == userID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.TelegramUserID] = &copied
	return nil
}

type fakeAlertRepo struct {
	alerts    []domain.Alert
	nextID    uint
	createErr error
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *domain.Alert) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	alert.ID = r.nextID
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *fakeAlertRepo) ListActiveByUser(_ context.Context, userID uint) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, alert := range r.alerts {
		if alert.UserID == userID && alert.Active {
			out = append(out, alert)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) ListAllActive(_ context.Context) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, alert := range r.alerts {
		if alert.Active {
			out = append(out, alert)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) Deactivate(_ context.Context, userID uint, alertID uint) error {
	for i := range r.alerts {
		if r.alerts[i].ID == alertID && r.alerts[i].UserID == userID && r.alerts[i].Active {
			r.alerts[i].Active = false
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeGamma struct {
	event *domain.EventMarkets
	err   error
	calls int
}

func (g *fakeGamma) GetEventBySlug(_ context.Context, slug string) (*domain.EventMarkets, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.event, nil
}

type fakePriceClient struct {
	prices map[string]decimal.Decimal
	err    error
}

func (c *fakePriceClient) GetPrice(_ context.Context, tokenID string, _ domain.Side) (decimal.Decimal, error) {
	if c.err != nil {
		return decimal.Decimal{}, c.err
	}
	price, ok := c.prices[tokenID]
	if !ok {
		return decimal.Decimal{}, domain.ErrPriceUnavailable
	}
	return price, nil
}

type sentMessage struct {
	telegramUserID int64
	text           string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Notify(telegramUserID int64, text string) error {
	n.sent = append(n.sent, sentMessage{telegramUserID: telegramUserID, text: text})
	return n.err
}

// btcEvent is a typical grouped event with strikes 78,000 and 82,000.
func btcEvent() *domain.EventMarkets {
	return &domain.EventMarkets{
		EventSlug: "bitcoin-above-on-december-12",
		Markets: []domain.MarketInfo{
			{
				Slug:        "bitcoin-above-78k-on-december-12",
				StrikeLabel: "78,000",
				TokenIDs:    []string{"yes-78", "no-78"},
			},
			{
				Slug:        "bitcoin-above-82k-on-december-12",
				StrikeLabel: "82,000",
				TokenIDs:    []string{"yes-82", "no-82"},
			},
		},
	}
}
