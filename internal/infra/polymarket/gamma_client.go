package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avolkov/polyalerts/internal/domain"
	"go.uber.org/zap"
)

// GammaClient talks to the Gamma market-metadata API.
type GammaClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGammaClient(baseURL string, timeout time.Duration, logger *zap.Logger) *GammaClient {
	return &GammaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetEventBySlug fetches one event with its markets. The endpoint
// answers either {"events": [...]} or a bare array; both are accepted
// and the first event wins. An empty result set or a 404 means the
// event does not exist; other failures are transient.
func (c *GammaClient) GetEventBySlug(ctx context.Context, slug string) (*domain.EventMarkets, error) {
	endpoint := fmt.Sprintf("%s/events?slug=%s", c.baseURL, url.QueryEscape(slug))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("gamma request failed", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("gamma request: %w", err)
	}
	defer response.Body.Close()

	c.logger.Debug(
		"gamma request complete",
		zap.String("slug", slug),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return nil, domain.ErrEventNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("gamma error: status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("gamma read body: %w", err)
	}

	event, err := decodeFirstEvent(body)
	if err != nil {
		return nil, err
	}

	markets := make([]domain.MarketInfo, 0, len(event.Markets))
	for _, market := range event.Markets {
		markets = append(markets, domain.MarketInfo{
			Slug:        market.Slug,
			Question:    market.Question,
			StrikeLabel: market.GroupItemTitle,
			TokenIDs:    []string(market.ClobTokenIDs),
		})
	}

	return &domain.EventMarkets{EventSlug: event.Slug, Markets: markets}, nil
}

func decodeFirstEvent(body []byte) (*gammaEvent, error) {
	trimmed := strings.TrimSpace(string(body))
	var events []gammaEvent
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, fmt.Errorf("gamma decode array: %w", err)
		}
	default:
		var envelope gammaEventsEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("gamma decode object: %w", err)
		}
		events = envelope.Events
	}

	if len(events) == 0 {
		return nil, domain.ErrEventNotFound
	}
	return &events[0], nil
}
