package domain

import "time"

// Report bundles every derived view computed from one trade list.
// When a date range is configured every view covers only the trades inside it.
type Report struct {
	From, To        time.Time // Applied exit-time range; zero means unbounded
	TradeCount      int       // Trades inside the range
	Metrics         PortfolioMetrics
	EquityCurve     []EquityPoint
	Volume          []VolumeBucket
	TimePerformance TimePerformance
	Fees            []FeeBreakdown
	MonthlyReturns  []MonthlyReturn
	DirectionPnL    DirectionPnL
	Markets         []MarketPerformance // One entry per market type, display order
}

// Snapshot is the result of one successful refresh cycle.
// The service keeps the last successful snapshot until a newer one completes.
type Snapshot struct {
	ID             string
	GeneratedAt    time.Time
	EventCount     int
	UnmatchedExits int
	OpenPositions  []OpenPosition
	Trades         []*Trade // Canonical order: exit time descending
	Report         Report
}
