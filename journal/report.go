package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

var kpiOrgFuncs = template.FuncMap{
	"opt": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "n/a"
		}
		return d.Decimal.StringFixed(4)
	},
	"pct": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "n/a"
		}
		return d.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	},
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"rfc": func(t time.Time) string { return t.Format(time.RFC3339) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var kpiOrg = template.Must(template.New("kpi").Funcs(kpiOrgFuncs).Parse(KPIOrgTemplate))

// FormatKPIOrg renders a KPI snapshot as an Org-mode block.
func FormatKPIOrg(rec KPIRecord) (string, error) {
	buf := new(bytes.Buffer)
	if err := kpiOrg.Execute(buf, rec); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteKPIOrg renders rec into path.
func WriteKPIOrg(path string, rec KPIRecord) error {
	s, err := FormatKPIOrg(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const KPIOrgTemplate = `* KPI: {{.Scope.Kind}} {{.Scope.RefID}}
:PROPERTIES:
:SCOPE:         {{.Scope.Kind}}
:SCOPE_REF_ID:  {{.Scope.RefID}}
:PERIOD_START:  {{rfc .Scope.Period.Start}}
:PERIOD_END:    {{rfc .Scope.Period.End}}
:TRADES:        {{.TotalTrades}}
:WINS:          {{.Wins}}
:LOSSES:        {{.Losses}}
:NET_PNL:       {{fixed .NetPnL}}
:WIN_RATE:      {{opt .WinRate}}
:AVG_WIN:       {{opt .AvgWin}}
:AVG_LOSS:      {{opt .AvgLoss}}
:PROFIT_FAC:    {{opt .ProfitFactor}}
:EXPECTANCY:    {{opt .Expectancy}}
:MAX_DD:        {{opt .MaxDrawdown}}
:UPDATED:       [{{(orTime .UpdatedAt).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{fixed .NetPnL}}*
- Win Rate:         *{{pct .WinRate}}*
- Profit Factor:    *{{opt .ProfitFactor}}*
- Expectancy:       *{{opt .Expectancy}}*
- Max Drawdown:     *{{opt .MaxDrawdown}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.TotalTrades}} |
`
