package usecase

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/polyalerts/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// ExtractEventSlug pulls the event slug out of a market link. Accepted
// shape: https://polymarket.com/event/<event-slug>[/<market-slug>], with
// query parameters and trailing segments ignored. Malformed input is a
// normal outcome, reported through ok.
func ExtractEventSlug(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	var segments []string
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) < 2 || segments[0] != "event" {
		return "", false
	}
	return segments[1], true
}

// ParseOutcome splits an outcome spec of the form "<strike> [yes|no]".
// The strike is mandatory; the side defaults to YES when omitted or
// unrecognized.
func ParseOutcome(spec string) (strike int64, sideYes bool, ok bool) {
	parts := strings.Fields(spec)
	if len(parts) == 0 {
		return 0, true, false
	}
	strike, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, true, false
	}
	sideYes = true
	if len(parts) >= 2 && strings.EqualFold(parts[1], "no") {
		sideYes = false
	}
	return strike, sideYes, true
}

// normalizeStrikeLabel turns a human-formatted strike label such as
// "78,000" into its integer value. Labels that are not integers after
// separator removal never match anything.
func normalizeStrikeLabel(label string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', ' ', '_', '\'':
			return -1
		}
		return r
	}, strings.TrimSpace(label))
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Resolver turns market references into tradable instruments. When a
// cache TTL is set, resolved events are reused across calls for that
// long; both the creation-time validation and the polling worker share
// the cache.
type Resolver struct {
	gamma domain.GammaClient
	cache *gocache.Cache
}

func NewResolver(gamma domain.GammaClient, cacheTTL time.Duration) *Resolver {
	var cache *gocache.Cache
	if cacheTTL > 0 {
		cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &Resolver{gamma: gamma, cache: cache}
}

func (r *Resolver) ResolveEvent(ctx context.Context, slug string) (*domain.EventMarkets, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(slug); ok {
			return cached.(*domain.EventMarkets), nil
		}
	}
	event, err := r.gamma.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.SetDefault(slug, event)
	}
	return event, nil
}

// SelectInstrument picks the token for an outcome spec. Only an exact
// strike match selects a market; picking the wrong strike silently would
// be worse than failing.
func (r *Resolver) SelectInstrument(event *domain.EventMarkets, outcomeSpec string) (string, error) {
	strike, sideYes, ok := ParseOutcome(outcomeSpec)
	if !ok {
		return "", domain.ErrStrikeNotFound
	}

	market, found := findMarketByStrike(event, strike)
	if !found {
		return "", domain.ErrStrikeNotFound
	}

	if len(market.TokenIDs) < 2 || market.TokenIDs[0] == "" || market.TokenIDs[1] == "" {
		return "", domain.ErrInstrumentNotFound
	}
	if sideYes {
		return market.TokenIDs[0], nil
	}
	return market.TokenIDs[1], nil
}

// StrikeExists reports whether some market's normalized strike label
// equals strike exactly.
func (r *Resolver) StrikeExists(event *domain.EventMarkets, strike int64) bool {
	_, found := findMarketByStrike(event, strike)
	return found
}

func findMarketByStrike(event *domain.EventMarkets, strike int64) (domain.MarketInfo, bool) {
	for _, market := range event.Markets {
		value, ok := normalizeStrikeLabel(market.StrikeLabel)
		if !ok {
			continue
		}
		if value == strike {
			return market, true
		}
	}
	return domain.MarketInfo{}, false
}
