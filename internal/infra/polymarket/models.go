package polymarket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type gammaEventsEnvelope struct {
	Events []gammaEvent `json:"events"`
}

type gammaEvent struct {
	Slug    string        `json:"slug"`
	Markets []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	Slug           string     `json:"slug"`
	Question       string     `json:"question"`
	GroupItemTitle string     `json:"groupItemTitle"`
	ClobTokenIDs   StringList `json:"clobTokenIds"`
}

type clobPriceResponse struct {
	Price NullableDecimal `json:"price"`
}

// StringList decodes a JSON array of strings that the API sometimes
// delivers double-encoded, i.e. as a JSON string holding an array
// ("[\"123\", \"456\"]").
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		*s = nil
		return nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			*s = nil
			return nil
		}
		var values []string
		if err := json.Unmarshal([]byte(inner), &values); err == nil {
			*s = values
			return nil
		}
		*s = []string{inner}
		return nil
	}

	if trimmed[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}

	return fmt.Errorf("unexpected string list format: %s", trimmed)
}

// NullableDecimal decodes a decimal that may arrive as a JSON number,
// a quoted number, or null.
type NullableDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (n *NullableDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		n.Valid = false
		return nil
	}
	if trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.Trim(trimmed, "\"")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		n.Valid = false
		return err
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}

func (n NullableDecimal) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Decimal.String())
}
