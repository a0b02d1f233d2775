package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avolkov/polyalerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CLOBClient fetches instrument prices from the CLOB API.
type CLOBClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewCLOBClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CLOBClient {
	return &CLOBClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetPrice returns the current price of a token in [0, 1]. A non-200
// response or a missing/unparsable price field yields
// domain.ErrPriceUnavailable.
func (c *CLOBClient) GetPrice(ctx context.Context, tokenID string, side domain.Side) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("token_id", tokenID)
	query.Set("side", string(side))
	endpoint := fmt.Sprintf("%s/price?%s", c.baseURL, query.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("clob price request failed", zap.String("token_id", tokenID), zap.Error(err))
		return decimal.Decimal{}, fmt.Errorf("clob request: %w", err)
	}
	defer response.Body.Close()

	c.logger.Debug(
		"clob price request complete",
		zap.String("token_id", tokenID),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode != http.StatusOK {
		return decimal.Decimal{}, domain.ErrPriceUnavailable
	}

	var payload clobPriceResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, domain.ErrPriceUnavailable
	}
	if !payload.Price.Valid {
		return decimal.Decimal{}, domain.ErrPriceUnavailable
	}

	return payload.Price.Decimal, nil
}
