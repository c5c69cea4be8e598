package eventfile

import (
	"fmt"
	"strings"
	"time"

	"tradeAnalytics/internal/domain"
)

// record is the on-disk shape of one event in JSON and YAML files.
// CSV files use the same column names.
type record struct {
	TxID       string   `json:"tx_id" yaml:"tx_id"`
	Timestamp  string   `json:"timestamp" yaml:"timestamp"`
	Symbol     string   `json:"symbol" yaml:"symbol"`
	Direction  string   `json:"direction" yaml:"direction"`
	MarketType string   `json:"market_type" yaml:"market_type"`
	OrderType  string   `json:"order_type" yaml:"order_type"`
	Price      float64  `json:"price" yaml:"price"`
	Quantity   float64  `json:"quantity" yaml:"quantity"`
	Fee        float64  `json:"fee" yaml:"fee"`
	IsEntry    bool     `json:"is_entry" yaml:"is_entry"`
	PnLHint    *float64 `json:"pnl_hint,omitempty" yaml:"pnl_hint,omitempty"`
}

func (r record) toEvent() (domain.MarketEvent, error) {
	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return domain.MarketEvent{}, err
	}
	return domain.MarketEvent{
		TxID:       strings.TrimSpace(r.TxID),
		Symbol:     strings.TrimSpace(r.Symbol),
		Direction:  domain.ParseDirection(r.Direction),
		MarketType: domain.ParseMarketType(r.MarketType),
		OrderType:  domain.ParseOrderType(r.OrderType),
		Price:      r.Price,
		Quantity:   r.Quantity,
		Fee:        r.Fee,
		Timestamp:  ts,
		IsEntry:    r.IsEntry,
		PnLHint:    r.PnLHint,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is not RFC3339", s)
	}
	return ts, nil
}
