package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tradeAnalytics/internal/domain"
)

// BuildReport narrows the trades to cfg's exit-time range, then runs every
// reducer over that list concurrently. Each goroutine fills its own field.
func BuildReport(ctx context.Context, trades []*domain.Trade, cfg Config) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !cfg.From.IsZero() || !cfg.To.IsZero() {
		trades = FilterByExitTime(trades, cfg.From, cfg.To)
	}
	report := &domain.Report{From: cfg.From, To: cfg.To, TradeCount: len(trades)}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Metrics = ComputeMetrics(trades, cfg)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.EquityCurve = GenerateEquityCurve(trades, cfg.StartingCapital)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Volume = GenerateVolumeBuckets(trades)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.TimePerformance = GenerateTimePerformance(trades, cfg)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Fees = SummarizeFees(trades, cfg.Fees)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.MonthlyReturns = MonthlyReturns(trades)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.DirectionPnL = SplitPnLByDirection(trades)
		report.Markets = MarketBreakdown(trades, cfg)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
