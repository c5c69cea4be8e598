package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeAnalytics/internal/domain"
)

func TestBuildReport(t *testing.T) {
	trades := []*domain.Trade{
		trade("b", -20, 2*time.Hour),
		trade("a", 50, time.Hour),
	}
	trades[0].Fees = 1
	cfg := DefaultConfig()
	cfg.Location = time.UTC

	report, err := BuildReport(context.Background(), trades, cfg)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, ComputeMetrics(trades, cfg), report.Metrics)
	assert.Len(t, report.EquityCurve, 2)
	assert.Len(t, report.Volume, 1)
	assert.Len(t, report.TimePerformance.Daily, 7)
	assert.Len(t, report.TimePerformance.Hourly, 24)
	assert.Len(t, report.Fees, 4)
	assert.Len(t, report.MonthlyReturns, 1)
	assert.Equal(t, 30.0, report.MonthlyReturns[0].Return)
}

func TestBuildReport_Empty(t *testing.T) {
	report, err := BuildReport(context.Background(), nil, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Metrics.TotalTrades)
	assert.Empty(t, report.EquityCurve)
	assert.Empty(t, report.Volume)
	assert.Empty(t, report.Fees)
	assert.Len(t, report.TimePerformance.Daily, 7)
}

func TestBuildReport_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := BuildReport(ctx, []*domain.Trade{trade("a", 1, 0)}, DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

func TestBuildReport_DateRange(t *testing.T) {
	short := trade("short", -8, 26*time.Hour)
	short.Direction = domain.Short
	short.MarketType = domain.MarketSpot
	trades := []*domain.Trade{
		trade("before", 100, -48*time.Hour),
		short,
		trade("inside", 12, time.Hour),
		trade("after", 500, 96*time.Hour),
	}
	cfg := DefaultConfig()
	cfg.Location = time.UTC
	cfg.From = t0
	cfg.To = t0.Add(48 * time.Hour)

	report, err := BuildReport(context.Background(), trades, cfg)
	require.NoError(t, err)

	inRange := []*domain.Trade{short, trades[2]}
	assert.Equal(t, 2, report.TradeCount)
	assert.Equal(t, cfg.From, report.From)
	assert.Equal(t, ComputeMetrics(inRange, cfg), report.Metrics)
	assert.Len(t, report.EquityCurve, 2)
	assert.InDelta(t, 12.0, report.DirectionPnL.Long, 1e-9)
	assert.InDelta(t, -8.0, report.DirectionPnL.Short, 1e-9)

	require.Len(t, report.Markets, 3)
	assert.Equal(t, 1, report.Markets[0].TradeCount, "spot")
	assert.Equal(t, 1, report.Markets[1].TradeCount, "perpetual")
	assert.Equal(t, 0, report.Markets[2].TradeCount, "options")
}
