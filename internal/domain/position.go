package domain

import "time"

// PositionKey identifies the slot an entry occupies while waiting for its exit.
type PositionKey struct {
	Symbol    string
	Direction Direction
}

// String renders the key as "symbol-direction".
func (k PositionKey) String() string {
	return k.Symbol + "-" + string(k.Direction)
}

// OpenPosition is an entry event that has no matching exit yet.
// Open positions carry no realized P&L and never feed the analytics.
type OpenPosition struct {
	Symbol     string
	Direction  Direction
	MarketType MarketType
	EntryPrice float64
	Quantity   float64
	Fee        float64
	EntryTime  time.Time
	TxID       string
}

// NewOpenPosition builds an OpenPosition from its entry event.
func NewOpenPosition(e MarketEvent) OpenPosition {
	return OpenPosition{
		Symbol:     e.Symbol,
		Direction:  e.Direction,
		MarketType: e.MarketType,
		EntryPrice: e.Price,
		Quantity:   e.Quantity,
		Fee:        e.Fee,
		EntryTime:  e.Timestamp,
		TxID:       e.TxID,
	}
}
