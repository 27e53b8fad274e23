// Package analytics derives equity curves, drawdowns and KPI sets from
// ledger trades. Every function is pure: the same trades always produce
// the same result.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

type curveConfig struct {
	loc *time.Location
}

// CurveOption adjusts how trades are bucketed into calendar dates.
type CurveOption func(*curveConfig)

// WithLocation buckets trades by their calendar date in loc instead of the
// location carried by each trade timestamp.
func WithLocation(loc *time.Location) CurveOption {
	return func(c *curveConfig) {
		c.loc = loc
	}
}

// TradeDate returns the calendar date a trade counts towards.
func TradeDate(t journal.Trade, opts ...CurveOption) time.Time {
	var cfg curveConfig
	for _, o := range opts {
		o(&cfg)
	}
	return tradeDate(t, cfg)
}

func tradeDate(t journal.Trade, cfg curveConfig) time.Time {
	ts := t.TradeTS
	if cfg.loc != nil {
		ts = ts.In(cfg.loc)
	}
	return journal.DateOf(ts)
}

// BuildEquityCurve sums net P/L per calendar date and returns the running
// total in ascending date order. Trades on the same date collapse into one
// point regardless of their time of day.
func BuildEquityCurve(trades []journal.Trade, opts ...CurveOption) []journal.EquityPoint {
	if len(trades) == 0 {
		return []journal.EquityPoint{}
	}

	var cfg curveConfig
	for _, o := range opts {
		o(&cfg)
	}

	daily := make(map[time.Time]decimal.Decimal)
	for _, t := range trades {
		d := tradeDate(t, cfg)
		daily[d] = daily[d].Add(t.NetPnL())
	}

	dates := make([]time.Time, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	curve := make([]journal.EquityPoint, 0, len(dates))
	equity := decimal.Zero
	for _, d := range dates {
		equity = equity.Add(daily[d])
		curve = append(curve, journal.EquityPoint{
			Date:   d,
			Equity: equity,
			NetPnL: daily[d],
		})
	}
	return curve
}
