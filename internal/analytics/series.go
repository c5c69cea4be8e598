package analytics

import (
	"fmt"
	"sort"
	"time"

	"tradeAnalytics/internal/domain"
)

const dateLayout = "2006-01-02"

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// GenerateEquityCurve emits one point per trade, oldest exit first, starting
// from startingCapital. Drawdown is measured against the running equity peak.
func GenerateEquityCurve(trades []*domain.Trade, startingCapital float64) []domain.EquityPoint {
	points := make([]domain.EquityPoint, 0, len(trades))
	equity := startingCapital
	peak := startingCapital

	for _, t := range chronologicalOrder(trades) {
		equity += t.PnL
		if equity > peak {
			peak = equity
		}
		drawdown := peak - equity
		var drawdownPercent float64
		if peak > 0 {
			drawdownPercent = drawdown / peak * 100
		}
		points = append(points, domain.EquityPoint{
			Date:            t.ExitTime.UTC().Format(dateLayout),
			Time:            t.ExitTime,
			Equity:          equity,
			PnL:             t.PnL,
			Drawdown:        drawdown,
			DrawdownPercent: drawdownPercent,
		})
	}
	return points
}

// GenerateVolumeBuckets sums entry notional per UTC calendar day of the exit,
// split by market type, ascending by date.
func GenerateVolumeBuckets(trades []*domain.Trade) []domain.VolumeBucket {
	byDate := make(map[string]*domain.VolumeBucket)
	for _, t := range trades {
		date := t.ExitTime.UTC().Format(dateLayout)
		bucket, ok := byDate[date]
		if !ok {
			bucket = &domain.VolumeBucket{
				Date:         date,
				ByMarketType: make(map[domain.MarketType]float64, len(domain.MarketTypes)),
			}
			for _, mt := range domain.MarketTypes {
				bucket.ByMarketType[mt] = 0
			}
			byDate[date] = bucket
		}
		volume := t.Notional()
		bucket.ByMarketType[t.MarketType] += volume
		bucket.Total += volume
	}

	buckets := make([]domain.VolumeBucket, 0, len(byDate))
	for _, b := range byDate {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// GenerateTimePerformance buckets trades by weekday and hour of their exit in
// cfg.Location. Both groupings are always fully populated.
func GenerateTimePerformance(trades []*domain.Trade, cfg Config) domain.TimePerformance {
	loc := cfg.location()
	perf := domain.TimePerformance{
		Daily:  make([]domain.TimeBucket, len(weekdayLabels)),
		Hourly: make([]domain.TimeBucket, 24),
	}
	for i, label := range weekdayLabels {
		perf.Daily[i].Label = label
	}
	for h := range perf.Hourly {
		perf.Hourly[h].Label = fmt.Sprintf("%02d:00", h)
	}

	for _, t := range trades {
		exit := t.ExitTime.In(loc)
		win := cfg.classify(t.PnL) == outcomeWin
		addToBucket(&perf.Daily[int(exit.Weekday())], t.PnL, win)
		addToBucket(&perf.Hourly[exit.Hour()], t.PnL, win)
	}

	for i := range perf.Daily {
		finishBucket(&perf.Daily[i])
	}
	for i := range perf.Hourly {
		finishBucket(&perf.Hourly[i])
	}
	return perf
}

func addToBucket(b *domain.TimeBucket, pnl float64, win bool) {
	b.PnL += pnl
	b.TradeCount++
	if win {
		b.WinCount++
	}
}

func finishBucket(b *domain.TimeBucket) {
	if b.TradeCount > 0 {
		b.WinRate = float64(b.WinCount) / float64(b.TradeCount) * 100
	}
}

// MonthlyReturns sums pnl per UTC calendar month of the exit, ascending by month.
func MonthlyReturns(trades []*domain.Trade) []domain.MonthlyReturn {
	byMonth := make(map[time.Time]float64)
	for _, t := range trades {
		exit := t.ExitTime.UTC()
		month := time.Date(exit.Year(), exit.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[month] += t.PnL
	}

	returns := make([]domain.MonthlyReturn, 0, len(byMonth))
	for month, pnl := range byMonth {
		returns = append(returns, domain.MonthlyReturn{Month: month, Return: pnl})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}
