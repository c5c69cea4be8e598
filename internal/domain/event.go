package domain

import (
	"fmt"
	"math"
	"time"
)

// MarketEvent is a single typed open or close event produced by the event normalizer.
// It is treated as immutable once produced.
type MarketEvent struct {
	TxID       string     // Originating transaction id (may be empty)
	Symbol     string     // Instrument symbol (e.g., "SOL-PERP")
	Direction  Direction  // Long or short
	MarketType MarketType // Spot, perpetual or options
	OrderType  OrderType  // How the order was placed
	Price      float64    // Execution price
	Quantity   float64    // Executed size
	Fee        float64    // Normalized non-negative fee
	Timestamp  time.Time  // Execution time
	IsEntry    bool       // True for an opening event, false for a closing one
	PnLHint    *float64   // Realized P&L already computed by the source, if any
}

// Key returns the matching key (symbol + direction) of the event.
func (e MarketEvent) Key() PositionKey {
	return PositionKey{Symbol: e.Symbol, Direction: e.Direction}
}

// Notional returns price * quantity.
func (e MarketEvent) Notional() float64 {
	return e.Price * e.Quantity
}

// Validate rejects events whose numeric or enumerated fields cannot be used.
func (e MarketEvent) Validate() error {
	if e.Symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	if !e.Direction.Valid() {
		return fmt.Errorf("unknown direction %q", e.Direction)
	}
	if !e.MarketType.Valid() {
		return fmt.Errorf("unknown market type %q", e.MarketType)
	}
	if e.OrderType != "" && !e.OrderType.Valid() {
		return fmt.Errorf("unknown order type %q", e.OrderType)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is zero")
	}
	if err := checkNonNegative("price", e.Price); err != nil {
		return err
	}
	if err := checkNonNegative("quantity", e.Quantity); err != nil {
		return err
	}
	if err := checkNonNegative("fee", e.Fee); err != nil {
		return err
	}
	if e.PnLHint != nil && !isFinite(*e.PnLHint) {
		return fmt.Errorf("pnl hint is not a finite number")
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if !isFinite(v) {
		return fmt.Errorf("%s is not a finite number", name)
	}
	if v < 0 {
		return fmt.Errorf("%s %v is negative", name, v)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
