package domain

import "time"

// EquityPoint is one point of the equity curve; one point per closed trade.
type EquityPoint struct {
	Date            string    // YYYY-MM-DD (UTC) of the exit
	Time            time.Time // Exit time
	Equity          float64   // Cumulative equity including starting capital
	PnL             float64   // PnL of the trade closing at this point
	Drawdown        float64   // Absolute decline from the running peak
	DrawdownPercent float64   // Decline from the running peak, percent of peak
}

// VolumeBucket aggregates entry notional per calendar day.
type VolumeBucket struct {
	Date         string // YYYY-MM-DD (UTC)
	ByMarketType map[MarketType]float64
	Total        float64
}

// TimeBucket accumulates performance for one weekday or one hour of the day.
type TimeBucket struct {
	Label      string // "Sun".."Sat" or "00:00".."23:00"
	PnL        float64
	TradeCount int
	WinCount   int
	WinRate    float64 // Percent, 0 when TradeCount is 0
}

// TimePerformance groups the fixed-size weekday and hour buckets.
type TimePerformance struct {
	Daily  []TimeBucket // Always 7 entries, Sun first
	Hourly []TimeBucket // Always 24 entries, 00:00 first
}

// FeeBreakdown is one estimated fee category.
// The split is an estimate derived from fixed weights, not a measured breakdown.
type FeeBreakdown struct {
	Type       string
	Amount     float64
	Percentage float64
}

// DirectionPnL splits realized pnl by position direction.
type DirectionPnL struct {
	Long  float64
	Short float64
}

// MarketPerformance summarizes the trades closed on one market type.
type MarketPerformance struct {
	MarketType MarketType
	PnL        float64
	TradeCount int
	WinCount   int
	WinRate    float64 // Percent, 0 when TradeCount is 0
}

// MonthlyReturn holds the summed pnl of trades closed in one calendar month.
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}
