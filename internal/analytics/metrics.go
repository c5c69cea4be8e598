package analytics

import (
	"math"
	"sort"

	"tradeAnalytics/internal/domain"
)

// ComputeMetrics reduces a trade list into a PortfolioMetrics value.
//
// Streaks are read in canonical order (exit time descending, most recent
// first); drawdown is walked chronologically. The function is total: an empty
// list yields domain.EmptyMetrics and every ratio with a zero denominator
// resolves to a fixed default instead of failing.
func ComputeMetrics(trades []*domain.Trade, cfg Config) domain.PortfolioMetrics {
	if len(trades) == 0 {
		return domain.EmptyMetrics()
	}

	ordered := canonicalOrder(trades)
	n := len(ordered)
	m := domain.PortfolioMetrics{TotalTrades: n}

	var grossProfit, grossLoss, totalDuration float64
	var longs int
	returns := make([]float64, 0, n)

	for _, t := range ordered {
		m.TotalPnL += t.PnL
		m.TotalFees += t.Fees
		m.TotalVolume += t.Notional()
		totalDuration += float64(t.DurationMinutes)
		returns = append(returns, t.PnLPercent)
		if t.Direction == domain.Long {
			longs++
		}

		switch cfg.classify(t.PnL) {
		case outcomeWin:
			m.WinningTrades++
			grossProfit += t.PnL
			m.LargestWin = math.Max(m.LargestWin, t.PnL)
		case outcomeLoss:
			m.LosingTrades++
			grossLoss += math.Abs(t.PnL)
			m.LargestLoss = math.Min(m.LargestLoss, t.PnL)
		default:
			m.ScratchTrades++
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(n) * 100
	if m.WinningTrades > 0 {
		m.AverageWin = grossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = grossLoss / float64(m.LosingTrades)
	}
	m.AvgTradeDuration = totalDuration / float64(n)

	m.LongestWinStreak, m.LongestLossStreak = longestStreaks(ordered, cfg)
	m.CurrentStreak, m.CurrentStreakType = currentStreak(ordered, cfg)

	m.LongRatio = float64(longs) / float64(n) * 100
	m.ShortRatio = 100 - m.LongRatio

	m.SharpeRatio = sharpeRatio(returns)
	m.MaxDrawdown = maxDrawdownPercent(trades)

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	}

	winFraction := m.WinRate / 100
	m.Expectancy = winFraction*m.AverageWin - (1-winFraction)*m.AverageLoss

	if cfg.StartingCapital > 0 {
		m.ROI = m.TotalPnL / cfg.StartingCapital * 100
	}
	m.TotalPnLPercent = m.ROI
	m.RealizedPnL = m.TotalPnL

	return m
}

// canonicalOrder returns a copy sorted by exit time descending. Ties keep input order.
func canonicalOrder(trades []*domain.Trade) []*domain.Trade {
	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.After(ordered[j].ExitTime)
	})
	return ordered
}

// chronologicalOrder returns a copy sorted by exit time ascending. Ties keep input order.
func chronologicalOrder(trades []*domain.Trade) []*domain.Trade {
	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.Before(ordered[j].ExitTime)
	})
	return ordered
}

// longestStreaks finds the longest runs of wins and losses. A scratch ends both runs.
func longestStreaks(ordered []*domain.Trade, cfg Config) (longestWin, longestLoss int) {
	var wins, losses int
	for _, t := range ordered {
		switch cfg.classify(t.PnL) {
		case outcomeWin:
			wins++
			losses = 0
		case outcomeLoss:
			losses++
			wins = 0
		default:
			wins, losses = 0, 0
		}
		if wins > longestWin {
			longestWin = wins
		}
		if losses > longestLoss {
			longestLoss = losses
		}
	}
	return longestWin, longestLoss
}

// currentStreak measures the run that starts at the most recent trade.
func currentStreak(ordered []*domain.Trade, cfg Config) (int, domain.StreakType) {
	if len(ordered) == 0 {
		return 0, domain.StreakNone
	}
	first := cfg.classify(ordered[0].PnL)
	if first == outcomeScratch {
		return 0, domain.StreakNone
	}
	streak := 0
	for _, t := range ordered {
		if cfg.classify(t.PnL) != first {
			break
		}
		streak++
	}
	if first == outcomeWin {
		return streak, domain.StreakWin
	}
	return streak, domain.StreakLoss
}

// maxDrawdownPercent walks cumulative pnl in the equity curve's order (oldest
// exit first, ties in input order) and returns the largest decline from the
// running peak as a percent of that peak. Peaks <= 0 count as no drawdown.
func maxDrawdownPercent(trades []*domain.Trade) float64 {
	var cumPnL, peak, maxDD float64
	for _, t := range chronologicalOrder(trades) {
		cumPnL += t.PnL
		peak = math.Max(peak, cumPnL)
		if peak <= 0 {
			continue
		}
		if dd := (peak - cumPnL) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
