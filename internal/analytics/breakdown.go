package analytics

import (
	"time"

	"tradeAnalytics/internal/domain"
)

// FilterByExitTime returns the trades whose exit time lies in [from, to].
// A zero bound is open. The result is a new slice in input order.
func FilterByExitTime(trades []*domain.Trade, from, to time.Time) []*domain.Trade {
	filtered := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if !from.IsZero() && t.ExitTime.Before(from) {
			continue
		}
		if !to.IsZero() && t.ExitTime.After(to) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// SplitPnLByDirection totals realized pnl for long and short trades.
func SplitPnLByDirection(trades []*domain.Trade) domain.DirectionPnL {
	var split domain.DirectionPnL
	for _, t := range trades {
		switch t.Direction {
		case domain.Long:
			split.Long += t.PnL
		case domain.Short:
			split.Short += t.PnL
		}
	}
	return split
}

// MarketBreakdown reports pnl, trade count and win rate per market type.
// Every known market type is present, in domain.MarketTypes order.
func MarketBreakdown(trades []*domain.Trade, cfg Config) []domain.MarketPerformance {
	index := make(map[domain.MarketType]int, len(domain.MarketTypes))
	markets := make([]domain.MarketPerformance, len(domain.MarketTypes))
	for i, mt := range domain.MarketTypes {
		markets[i].MarketType = mt
		index[mt] = i
	}

	for _, t := range trades {
		i, ok := index[t.MarketType]
		if !ok {
			continue
		}
		m := &markets[i]
		m.PnL += t.PnL
		m.TradeCount++
		if cfg.classify(t.PnL) == outcomeWin {
			m.WinCount++
		}
	}

	for i := range markets {
		if markets[i].TradeCount > 0 {
			markets[i].WinRate = float64(markets[i].WinCount) / float64(markets[i].TradeCount) * 100
		}
	}
	return markets
}
