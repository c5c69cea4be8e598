// Package matching reconstructs closed round-trip trades from unordered
// entry and exit market events.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/ports"
)

// Policy selects which open entry an exit event closes.
type Policy string

const (
	// PolicyOverwrite tracks at most one open entry per (symbol, direction).
	// A newer entry replaces an older unmatched one.
	PolicyOverwrite Policy = "overwrite"
	// PolicyFIFO queues entries per key; an exit closes the oldest one.
	PolicyFIFO Policy = "fifo"
	// PolicyLIFO queues entries per key; an exit closes the newest one.
	PolicyLIFO Policy = "lifo"
)

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyOverwrite, nil
	case PolicyOverwrite, PolicyFIFO, PolicyLIFO:
		return p, nil
	default:
		return "", fmt.Errorf("unknown match policy %q (want overwrite, fifo or lifo)", s)
	}
}

// Result is the outcome of one matching pass.
type Result struct {
	Trades           []*domain.Trade       // Exit time descending
	Open             []domain.OpenPosition // Entries still open after the last event, entry time ascending
	UnmatchedExits   int                   // Exits seen with no open entry for their key
	DiscardedEntries int                   // Entries replaced before being closed (overwrite policy only)
}

// Matcher pairs entry events with exit events per (symbol, direction).
type Matcher struct {
	policy Policy
}

// NewMatcher creates a Matcher using the given policy.
func NewMatcher(policy Policy) (*Matcher, error) {
	p, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}
	return &Matcher{policy: p}, nil
}

// Policy returns the matcher's policy.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// MatchTrades pairs events using the overwrite policy and returns the closed
// trades, most recent exit first. Unmatched entries and exits are dropped.
func MatchTrades(events []domain.MarketEvent) ([]*domain.Trade, error) {
	res, err := (&Matcher{policy: PolicyOverwrite}).Match(events)
	if err != nil {
		return nil, err
	}
	return res.Trades, nil
}

// Match validates the batch and reconstructs trades from it.
// The input slice is not modified. The whole batch is rejected on the first invalid event.
func (m *Matcher) Match(events []domain.MarketEvent) (*Result, error) {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: event %d (tx %q): %w", ports.ErrInvalidEvent, i, e.TxID, err)
		}
	}

	sorted := make([]domain.MarketEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	res := &Result{Trades: make([]*domain.Trade, 0)}
	open := make(map[domain.PositionKey][]domain.MarketEvent)

	for _, e := range sorted {
		key := e.Key()
		if e.IsEntry {
			if m.policy == PolicyOverwrite {
				if len(open[key]) > 0 {
					res.DiscardedEntries++
				}
				open[key] = []domain.MarketEvent{e}
			} else {
				open[key] = append(open[key], e)
			}
			continue
		}

		queue := open[key]
		if len(queue) == 0 {
			res.UnmatchedExits++
			continue
		}
		var entry domain.MarketEvent
		if m.policy == PolicyFIFO {
			entry, queue = queue[0], queue[1:]
		} else {
			entry, queue = queue[len(queue)-1], queue[:len(queue)-1]
		}
		if len(queue) == 0 {
			delete(open, key)
		} else {
			open[key] = queue
		}
		res.Trades = append(res.Trades, buildTrade(entry, e))
	}

	sort.SliceStable(res.Trades, func(i, j int) bool {
		return res.Trades[i].ExitTime.After(res.Trades[j].ExitTime)
	})

	res.Open = collectOpen(open)
	return res, nil
}

// buildTrade computes the realized figures of one (entry, exit) pair.
// A pnl hint on the exit replaces the price-based pnl; fees are always deducted.
func buildTrade(entry, exit domain.MarketEvent) *domain.Trade {
	var pnl float64
	if exit.PnLHint != nil {
		pnl = *exit.PnLHint
	} else {
		sign := 1.0
		if entry.Direction == domain.Short {
			sign = -1.0
		}
		pnl = (exit.Price - entry.Price) * entry.Quantity * sign
	}
	fees := entry.Fee + exit.Fee
	pnl -= fees

	var pnlPercent float64
	if notional := entry.Notional(); notional > 0 {
		pnlPercent = pnl / notional * 100
	}

	orderType := entry.OrderType
	if orderType == "" {
		orderType = domain.OrderMarket
	}

	id := exit.TxID
	if id == "" {
		id = fmt.Sprintf("%s-%d", entry.Key(), exit.Timestamp.UnixNano())
	}

	return &domain.Trade{
		ID:              id,
		Symbol:          exit.Symbol,
		MarketType:      exit.MarketType,
		Direction:       entry.Direction,
		OrderType:       orderType,
		EntryPrice:      entry.Price,
		ExitPrice:       exit.Price,
		Quantity:        entry.Quantity,
		PnL:             pnl,
		PnLPercent:      pnlPercent,
		Fees:            fees,
		EntryTime:       entry.Timestamp,
		ExitTime:        exit.Timestamp,
		DurationMinutes: int64(math.Round(exit.Timestamp.Sub(entry.Timestamp).Minutes())),
		TxSignature:     exit.TxID,
	}
}

func collectOpen(open map[domain.PositionKey][]domain.MarketEvent) []domain.OpenPosition {
	positions := make([]domain.OpenPosition, 0, len(open))
	for _, queue := range open {
		for _, e := range queue {
			positions = append(positions, domain.NewOpenPosition(e))
		}
	}
	sort.SliceStable(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if !a.EntryTime.Equal(b.EntryTime) {
			return a.EntryTime.Before(b.EntryTime)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Direction < b.Direction
	})
	return positions
}
