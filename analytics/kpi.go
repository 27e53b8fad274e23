package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

// ComputeKPIs aggregates the metric set over trades. Metrics that are
// undefined for the input are left invalid; only TotalTrades, Wins, Losses
// and NetPnL are always set.
//
// A trade with zero net P/L counts as a loss. Profit factor is undefined
// unless the losses sum below zero, so a set of only winners never yields
// an infinite value.
func ComputeKPIs(trades []journal.Trade, opts ...CurveOption) journal.KPIs {
	k := journal.KPIs{
		TotalTrades: len(trades),
		NetPnL:      decimal.Zero,
	}
	if len(trades) == 0 {
		return k
	}

	winSum, lossSum := decimal.Zero, decimal.Zero
	for _, t := range trades {
		pnl := t.NetPnL()
		k.NetPnL = k.NetPnL.Add(pnl)
		if pnl.IsPositive() {
			k.Wins++
			winSum = winSum.Add(pnl)
		} else {
			k.Losses++
			lossSum = lossSum.Add(pnl)
		}
	}

	n := decimal.NewFromInt(int64(len(trades)))
	k.WinRate = valid(decimal.NewFromInt(int64(k.Wins)).Div(n))
	if k.Wins > 0 {
		k.AvgWin = valid(winSum.Div(decimal.NewFromInt(int64(k.Wins))))
	}
	if k.Losses > 0 {
		k.AvgLoss = valid(lossSum.Div(decimal.NewFromInt(int64(k.Losses))))
	}
	k.ProfitFactor = ProfitFactor(winSum, lossSum)
	k.Expectancy = valid(k.NetPnL.Div(n))
	k.MaxDrawdown = valid(ComputeDrawdown(BuildEquityCurve(trades, opts...)).Max)

	return k
}

// ProfitFactor is winSum / |lossSum|. It is undefined when lossSum is not
// negative and zero when there are losses but no winnings.
func ProfitFactor(winSum, lossSum decimal.Decimal) decimal.NullDecimal {
	if !lossSum.IsNegative() {
		return decimal.NullDecimal{}
	}
	if winSum.IsZero() {
		return valid(decimal.Zero)
	}
	return valid(winSum.Div(lossSum.Abs()))
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
