// Package analytics derives portfolio statistics and time-series views from a
// closed trade list. Every function is pure: inputs are never modified and
// results are recomputed in full on each call.
package analytics

import "time"

// DefaultStartingCapital is the capital the equity curve and roi are measured against.
const DefaultStartingCapital = 10000.0

// Config holds the tunables shared by the reducers.
type Config struct {
	StartingCapital float64        // Base for roi and the equity curve
	ScratchEpsilon  float64        // |pnl| <= epsilon counts as a scratch; 0 means exact equality
	Location        *time.Location // Zone for weekday/hour buckets; nil means time.Local
	Fees            FeeSchedule    // Category weights for the fee estimate
	From, To        time.Time      // Inclusive exit-time range for BuildReport; zero means unbounded
}

// DefaultConfig returns the configuration matching the reference dashboard.
func DefaultConfig() Config {
	return Config{
		StartingCapital: DefaultStartingCapital,
		Location:        time.Local,
		Fees:            DefaultFeeSchedule(),
	}
}

type outcome int

const (
	outcomeScratch outcome = iota
	outcomeWin
	outcomeLoss
)

func (c Config) classify(pnl float64) outcome {
	switch {
	case pnl > c.ScratchEpsilon:
		return outcomeWin
	case pnl < -c.ScratchEpsilon:
		return outcomeLoss
	default:
		return outcomeScratch
	}
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
