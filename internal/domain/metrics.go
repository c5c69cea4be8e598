package domain

// PortfolioMetrics is a flat snapshot of aggregate statistics derived from a trade list.
// It is always recomputed in full; no field is ever updated incrementally.
type PortfolioMetrics struct {
	TotalPnL        float64
	TotalPnLPercent float64
	RealizedPnL     float64
	UnrealizedPnL   float64 // Open positions are not priced, always 0
	ROI             float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	ScratchTrades int
	WinRate       float64 // Percent, 0-100

	AverageWin       float64
	AverageLoss      float64 // Magnitude (positive)
	LargestWin       float64
	LargestLoss      float64 // Most negative pnl (<= 0)
	AvgTradeDuration float64 // Minutes

	SharpeRatio  float64
	MaxDrawdown  float64 // Percent of peak cumulative pnl
	Expectancy   float64
	ProfitFactor float64 // +Inf when there are wins but no losses

	LongRatio  float64
	ShortRatio float64

	CurrentStreak     int
	CurrentStreakType StreakType
	LongestWinStreak  int
	LongestLossStreak int

	TotalFees   float64
	TotalVolume float64
}

// EmptyMetrics returns the neutral metrics value used for an empty trade list.
func EmptyMetrics() PortfolioMetrics {
	return PortfolioMetrics{
		LongRatio:         50,
		ShortRatio:        50,
		CurrentStreakType: StreakNone,
	}
}
