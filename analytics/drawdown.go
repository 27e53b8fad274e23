package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

// Drawdown is the largest peak-to-trough decline of an equity curve. Max
// is never positive. Peak and Trough are nil only for an empty curve.
type Drawdown struct {
	Max    decimal.Decimal
	Peak   *time.Time
	Trough *time.Time
}

// ComputeDrawdown expects curve in ascending date order. The trough is the
// first date reaching the deepest drawdown; the peak is the earliest date
// holding the highest equity at or before it.
func ComputeDrawdown(curve []journal.EquityPoint) Drawdown {
	if len(curve) == 0 {
		return Drawdown{Max: decimal.Zero}
	}

	runMax := curve[0].Equity
	maxDD := decimal.Zero
	trough := 0
	for i, p := range curve {
		if p.Equity.GreaterThan(runMax) {
			runMax = p.Equity
		}
		if dd := p.Equity.Sub(runMax); dd.LessThan(maxDD) {
			maxDD = dd
			trough = i
		}
	}

	peak := 0
	for i := 1; i <= trough; i++ {
		if curve[i].Equity.GreaterThan(curve[peak].Equity) {
			peak = i
		}
	}

	peakDate := curve[peak].Date
	troughDate := curve[trough].Date
	return Drawdown{
		Max:    maxDD,
		Peak:   &peakDate,
		Trough: &troughDate,
	}
}
