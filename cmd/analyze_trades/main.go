package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"tradeAnalytics/config"
	"tradeAnalytics/internal/adapters/eventfile"
	"tradeAnalytics/internal/adapters/logger"
	"tradeAnalytics/internal/analytics"
	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/matching"
)

var (
	eventsPath = flag.String("events", "./data/events.csv", "event file (.csv, .json, .yaml)")
	capital    = flag.Float64("capital", analytics.DefaultStartingCapital, "starting capital for roi and the equity curve")
	policy     = flag.String("policy", string(matching.PolicyOverwrite), "lot matching policy: overwrite, fifo or lifo")
	zone       = flag.String("tz", "Local", "IANA time zone for weekday/hour buckets")
	epsilon    = flag.Float64("epsilon", 0, "|pnl| at or below this counts as a scratch")
	feesFile   = flag.String("fees", "", "optional YAML fee schedule")
	from       = flag.String("from", "", "only trades exiting at or after this time (RFC 3339 or YYYY-MM-DD)")
	to         = flag.String("to", "", "only trades exiting at or before this time (RFC 3339 or YYYY-MM-DD, whole day)")
	dumpPath   = flag.String("dump", "", "also write the loaded events, normalized, to this CSV file")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	level := logger.LevelWarn
	if *verbose {
		level = logger.LevelDebug
	}
	appLogger, err := logger.NewZapLogger(level, logger.FormatConsole)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	cfg, p, err := buildConfig()
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	source, err := eventfile.NewSource(*eventsPath, appLogger)
	if err != nil {
		log.Fatalf("Error opening events: %v", err)
	}

	ctx := context.Background()
	events, err := source.Events(ctx)
	if err != nil {
		log.Fatalf("Error reading events: %v", err)
	}
	if *dumpPath != "" {
		if err := eventfile.WriteCSV(events, *dumpPath); err != nil {
			log.Fatalf("Error writing %s: %v", *dumpPath, err)
		}
		fmt.Printf("Wrote %d events to %s\n", len(events), *dumpPath)
	}

	matcher, err := matching.NewMatcher(p)
	if err != nil {
		log.Fatalf("Error creating matcher: %v", err)
	}
	result, err := matcher.Match(events)
	if err != nil {
		log.Fatalf("Error matching events: %v", err)
	}

	report, err := analytics.BuildReport(ctx, result.Trades, cfg)
	if err != nil {
		log.Fatalf("Error building report: %v", err)
	}

	fmt.Printf("Source: %s\n", source.Path())
	fmt.Printf("Events: %d  Trades: %d  Open: %d  Unmatched exits: %d  Policy: %s\n",
		len(events), len(result.Trades), len(result.Open), result.UnmatchedExits, p)
	if !cfg.From.IsZero() || !cfg.To.IsZero() {
		fmt.Printf("Range: %s .. %s  Trades in range: %d\n",
			formatBound(cfg.From), formatBound(cfg.To), report.TradeCount)
	}
	printReport(os.Stdout, report)
}

func buildConfig() (analytics.Config, matching.Policy, error) {
	cfg := analytics.DefaultConfig()

	if !(*capital > 0) || math.IsInf(*capital, 0) {
		return cfg, "", fmt.Errorf("capital must be a positive finite number")
	}
	if !(*epsilon >= 0) || math.IsInf(*epsilon, 0) {
		return cfg, "", fmt.Errorf("epsilon must be a non-negative finite number")
	}
	cfg.StartingCapital = *capital
	cfg.ScratchEpsilon = *epsilon

	loc, err := time.LoadLocation(*zone)
	if err != nil {
		return cfg, "", fmt.Errorf("invalid time zone: %w", err)
	}
	cfg.Location = loc

	if cfg.From, err = config.ParseReportBound(*from, loc, false); err != nil {
		return cfg, "", fmt.Errorf("invalid -from: %w", err)
	}
	if cfg.To, err = config.ParseReportBound(*to, loc, true); err != nil {
		return cfg, "", fmt.Errorf("invalid -to: %w", err)
	}
	if !cfg.From.IsZero() && !cfg.To.IsZero() && cfg.To.Before(cfg.From) {
		return cfg, "", fmt.Errorf("-to is before -from")
	}

	if *feesFile != "" {
		cfg.Fees, err = config.LoadFeeSchedule(*feesFile)
		if err != nil {
			return cfg, "", err
		}
	}

	p, err := matching.ParsePolicy(*policy)
	if err != nil {
		return cfg, "", err
	}
	return cfg, p, nil
}

func printReport(out io.Writer, r *domain.Report) {
	m := r.Metrics

	fmt.Fprintln(out, "\n## Portfolio")
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Trades\tWins\tLosses\tScratch\tWinRate\tTotalPnL\tROI%\tAvgWin\tAvgLoss\tPF\tSharpe\tMaxDD%\tExpectancy\t")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%.2f\t%.2f\t%.2f\t\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.ScratchTrades, m.WinRate,
		m.TotalPnL, m.ROI, m.AverageWin, m.AverageLoss, formatFactor(m.ProfitFactor),
		m.SharpeRatio, m.MaxDrawdown, m.Expectancy)
	w.Flush()

	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Long%\tShort%\tStreak\tLongestWin\tLongestLoss\tAvgMinutes\tFees\tVolume\t")
	fmt.Fprintf(w, "%.1f\t%.1f\t%d %s\t%d\t%d\t%.1f\t%.2f\t%.2f\t\n",
		m.LongRatio, m.ShortRatio, m.CurrentStreak, m.CurrentStreakType, m.LongestWinStreak,
		m.LongestLossStreak, m.AvgTradeDuration, m.TotalFees, m.TotalVolume)
	w.Flush()

	fmt.Fprintln(out, "\n## By market")
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Market\tTrades\tPnL\tWinRate\t")
	for _, mp := range r.Markets {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.1f\t\n", mp.MarketType, mp.TradeCount, mp.PnL, mp.WinRate)
	}
	w.Flush()
	fmt.Fprintf(out, "Long PnL: %.2f  Short PnL: %.2f\n", r.DirectionPnL.Long, r.DirectionPnL.Short)

	fmt.Fprintln(out, "\n## By weekday")
	printBuckets(out, r.TimePerformance.Daily)

	fmt.Fprintln(out, "\n## By hour")
	printBuckets(out, r.TimePerformance.Hourly)

	fmt.Fprintln(out, "\n## Fees (estimated split)")
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Category\tAmount\tShare%\t")
	for _, f := range r.Fees {
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t\n", f.Type, f.Amount, f.Percentage)
	}
	w.Flush()

	fmt.Fprintln(out, "\n## Daily volume")
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Date\tSpot\tPerpetual\tOptions\tTotal\t")
	for _, v := range r.Volume {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t\n", v.Date,
			v.ByMarketType[domain.MarketSpot], v.ByMarketType[domain.MarketPerpetual],
			v.ByMarketType[domain.MarketOptions], v.Total)
	}
	w.Flush()

	fmt.Fprintln(out, "\n## Monthly returns")
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Month\tPnL\t")
	for _, mr := range r.MonthlyReturns {
		fmt.Fprintf(w, "%s\t%.2f\t\n", mr.Month.Format("2006-01"), mr.Return)
	}
	w.Flush()

	if n := len(r.EquityCurve); n > 0 {
		last := r.EquityCurve[n-1]
		fmt.Fprintf(out, "\nFinal equity: %.2f on %s\n", last.Equity, last.Date)
	}
}

func printBuckets(out io.Writer, buckets []domain.TimeBucket) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Period\tTrades\tPnL\tWinRate\t")
	for _, b := range buckets {
		if b.TradeCount == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.1f\t\n", b.Label, b.TradeCount, b.PnL, b.WinRate)
	}
	w.Flush()
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format(time.RFC3339)
}

func formatFactor(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", f)
}
