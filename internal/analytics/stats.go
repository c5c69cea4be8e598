package analytics

import "math"

// tradingPeriodsPerYear annualizes the per-trade Sharpe ratio. Each trade is
// treated as one period regardless of actual cadence.
const tradingPeriodsPerYear = 252

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev divides by n-1. Fewer than two values yield 0.
func sampleStdDev(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// sharpeRatio computes mean/stddev of per-trade returns scaled by sqrt(252).
// The risk-free rate is taken as zero.
func sharpeRatio(returns []float64) float64 {
	avg := mean(returns)
	stdDev := sampleStdDev(returns, avg)
	if stdDev <= 0 {
		return 0
	}
	return avg / stdDev * math.Sqrt(tradingPeriodsPerYear)
}
