package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func makeTrade(side journal.Side, qty, price string, ts time.Time) journal.Trade {
	return journal.Trade{
		AccountID: "acct",
		Ticker:    "2330.TW",
		Side:      side,
		Quantity:  dec(qty),
		Price:     dec(price),
		TradeTS:   ts,
		Fee:       decimal.Zero,
		Tax:       decimal.Zero,
	}
}

func withCosts(t journal.Trade, fee, tax string) journal.Trade {
	t.Fee = dec(fee)
	t.Tax = dec(tax)
	return t
}

func curveOf(values ...string) []journal.EquityPoint {
	out := make([]journal.EquityPoint, 0, len(values))
	for i, v := range values {
		out = append(out, journal.EquityPoint{Date: day(i + 1), Equity: dec(v)})
	}
	return out
}
