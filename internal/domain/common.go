package domain

import "strings"

// Direction represents the bias of a position (long or short).
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// MarketType represents the kind of market an event was executed on.
type MarketType string

const (
	MarketSpot      MarketType = "spot"
	MarketPerpetual MarketType = "perpetual"
	MarketOptions   MarketType = "options"
)

// MarketTypes lists every market type in display order.
var MarketTypes = []MarketType{MarketSpot, MarketPerpetual, MarketOptions}

// Valid reports whether m is one of the known market types.
func (m MarketType) Valid() bool {
	switch m {
	case MarketSpot, MarketPerpetual, MarketOptions:
		return true
	}
	return false
}

// OrderType indicates how the entry order was placed.
type OrderType string

const (
	OrderMarket     OrderType = "market"
	OrderLimit      OrderType = "limit"
	OrderStopLoss   OrderType = "stop-loss"
	OrderTakeProfit OrderType = "take-profit"
)

// Valid reports whether o is one of the known order types.
func (o OrderType) Valid() bool {
	switch o {
	case OrderMarket, OrderLimit, OrderStopLoss, OrderTakeProfit:
		return true
	}
	return false
}

// StreakType describes the sign of the current streak.
type StreakType string

const (
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
	StreakNone StreakType = "none"
)

// ParseDirection converts free text (any case) to a Direction.
// Unknown values are returned as-is so validation can reject them.
func ParseDirection(s string) Direction {
	return Direction(strings.ToLower(strings.TrimSpace(s)))
}

// ParseMarketType converts free text (any case) to a MarketType.
func ParseMarketType(s string) MarketType {
	return MarketType(strings.ToLower(strings.TrimSpace(s)))
}

// ParseOrderType converts free text to an OrderType. Empty input means a market order.
func ParseOrderType(s string) OrderType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return OrderMarket
	}
	return OrderType(s)
}
