package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a Trade as an Org-mode block. Structured facts go
// into the PROPERTIES drawer; the narrative headings are left for the user.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Side, t.Ticker, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ACCOUNT_ID: %s\n", t.AccountID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Ticker))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", t.Side))
	b.WriteString(fmt.Sprintf(":QUANTITY: %s\n", t.Quantity))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", t.Price))
	b.WriteString(fmt.Sprintf(":FEE: %s\n", t.Fee))
	b.WriteString(fmt.Sprintf(":TAX: %s\n", t.Tax))
	b.WriteString(fmt.Sprintf(":NET_PNL: %s\n", t.NetPnL().StringFixed(2)))
	b.WriteString(fmt.Sprintf(":TRADE_TS: %s\n", t.TradeTS.Format(time.RFC3339)))
	if t.OrderID != "" {
		b.WriteString(fmt.Sprintf(":ORDER_ID: %s\n", t.OrderID))
	}
	if t.Venue != "" {
		b.WriteString(fmt.Sprintf(":VENUE: %s\n", t.Venue))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// FormatEquityOrg renders an equity curve as an Org table.
func FormatEquityOrg(points []EquityPoint) string {
	var b strings.Builder
	b.WriteString("| Date | Net P/L | Equity |\n")
	b.WriteString("|------+---------+--------|\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			FormatDate(p.Date), p.NetPnL.StringFixed(2), p.Equity.StringFixed(2)))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
