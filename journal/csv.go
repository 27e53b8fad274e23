package journal

import (
	"encoding/csv"
	"io"
	"time"
)

var (
	tradeCSVHeader  = []string{"trade_id", "account_id", "symbol", "side", "quantity", "price", "fee", "tax", "net_pnl", "trade_ts", "order_id", "venue"}
	equityCSVHeader = []string{"date", "net_pnl_day", "equity"}
)

// CSVExporter writes ledger rows and equity points as CSV.
type CSVExporter struct {
	w *csv.Writer
}

func NewCSVExporter(w io.Writer) *CSVExporter {
	return &CSVExporter{w: csv.NewWriter(w)}
}

func (e *CSVExporter) WriteTrades(trades []Trade) error {
	if err := e.w.Write(tradeCSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := e.w.Write([]string{
			t.ID,
			t.AccountID,
			t.Ticker,
			string(t.Side),
			t.Quantity.String(),
			t.Price.String(),
			t.Fee.String(),
			t.Tax.String(),
			t.NetPnL().String(),
			t.TradeTS.Format(time.RFC3339Nano),
			t.OrderID,
			t.Venue,
		})
		if err != nil {
			return err
		}
	}
	e.w.Flush()
	return e.w.Error()
}

func (e *CSVExporter) WriteEquity(points []EquityPoint) error {
	if err := e.w.Write(equityCSVHeader); err != nil {
		return err
	}
	for _, p := range points {
		if err := e.w.Write([]string{FormatDate(p.Date), p.NetPnL.String(), p.Equity.String()}); err != nil {
			return err
		}
	}
	e.w.Flush()
	return e.w.Error()
}
