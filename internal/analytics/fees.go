package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"tradeAnalytics/internal/domain"
)

// FeeCategory is one named share of the fee estimate.
type FeeCategory struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// FeeSchedule splits aggregate fees into display categories by fixed weights.
// Per-category fee detail is not available from the events, so the split is an
// estimate, not a measurement.
type FeeSchedule struct {
	Categories []FeeCategory `yaml:"categories"`
	Places     int32         `yaml:"places"` // Decimal places amounts are rounded to
}

// DefaultFeeSchedule returns the 70/20/8/2 split rounded to cents.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Categories: []FeeCategory{
			{Name: "Trading Fees", Weight: 70},
			{Name: "Network Fees", Weight: 20},
			{Name: "Funding Fees", Weight: 8},
			{Name: "Other Fees", Weight: 2},
		},
		Places: 2,
	}
}

// Validate checks that the schedule can allocate a positive total.
func (s FeeSchedule) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("fee schedule has no categories")
	}
	if s.Places < 0 || s.Places > 8 {
		return fmt.Errorf("fee schedule places %d out of range 0-8", s.Places)
	}
	var sum float64
	for _, c := range s.Categories {
		if c.Name == "" {
			return fmt.Errorf("fee category name is empty")
		}
		if c.Weight < 0 {
			return fmt.Errorf("fee category %q has negative weight", c.Name)
		}
		sum += c.Weight
	}
	if sum <= 0 {
		return fmt.Errorf("fee category weights sum to zero")
	}
	return nil
}

// maxFeePlaces bounds how far the split widens past the schedule's places.
const maxFeePlaces = 8

// SummarizeFees allocates the summed trade fees across the schedule's categories.
//
// Amounts use the schedule's places, widened up to maxFeePlaces when the total
// carries finer digits (sub-cent on-chain fees), so the split never loses part
// of the total. The split uses the largest-remainder method and the category
// amounts add up to exactly the total. Categories whose amount is zero are
// omitted. A zero total (or an invalid schedule) yields an empty list.
func SummarizeFees(trades []*domain.Trade, schedule FeeSchedule) []domain.FeeBreakdown {
	breakdown := make([]domain.FeeBreakdown, 0, len(schedule.Categories))
	if schedule.Validate() != nil {
		return breakdown
	}

	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.Fees))
	}
	if !total.IsPositive() {
		return breakdown
	}

	places := schedule.Places
	for places < maxFeePlaces && !total.Equal(total.Round(places)) {
		places++
	}
	total = total.Round(places)

	weights := make([]decimal.Decimal, len(schedule.Categories))
	weightSum := decimal.Zero
	for i, c := range schedule.Categories {
		weights[i] = decimal.NewFromFloat(c.Weight)
		weightSum = weightSum.Add(weights[i])
	}

	amounts := make([]decimal.Decimal, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		exact := total.Mul(w).Div(weightSum)
		amounts[i] = exact.Truncate(places)
		remainders[i] = exact.Sub(amounts[i])
		allocated = allocated.Add(amounts[i])
	}

	unit := decimal.New(1, -places)
	leftover := total.Sub(allocated).Div(unit).IntPart()
	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := int64(0); k < leftover && len(order) > 0; k++ {
		i := order[int(k)%len(order)]
		amounts[i] = amounts[i].Add(unit)
	}

	hundred := decimal.NewFromInt(100)
	for i, c := range schedule.Categories {
		if amounts[i].IsZero() {
			continue
		}
		amount, _ := amounts[i].Float64()
		pct, _ := weights[i].Div(weightSum).Mul(hundred).Float64()
		breakdown = append(breakdown, domain.FeeBreakdown{
			Type:       c.Name,
			Amount:     amount,
			Percentage: pct,
		})
	}
	return breakdown
}
