package domain

import "time"

// Trade represents one closed round trip (a matched entry and exit).
type Trade struct {
	ID              string     // Unique identifier (exit transaction id when available)
	Symbol          string     // Instrument symbol
	MarketType      MarketType // Market of the closing event
	Direction       Direction  // Direction of the entry
	OrderType       OrderType  // Order type of the entry
	EntryPrice      float64    // Price at which the position was entered
	ExitPrice       float64    // Price at which the position was exited
	Quantity        float64    // Size of the entry
	PnL             float64    // Realized P&L net of fees
	PnLPercent      float64    // PnL relative to entry notional, in percent
	Fees            float64    // Entry fee + exit fee
	EntryTime       time.Time  // Timestamp of the entry event
	ExitTime        time.Time  // Timestamp of the exit event
	DurationMinutes int64      // Rounded minutes between entry and exit
	Notes           string     // Optional free text
	TxSignature     string     // Optional external reference
}

// Notional returns the entry notional (entry price * quantity).
func (t *Trade) Notional() float64 {
	return t.EntryPrice * t.Quantity
}
