// Package journal holds the trade ledger: its entities, the SQL store that
// persists them, and report renderers for computed results.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a fill.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide normalizes s to a Side. Unknown values are returned as-is so
// Validate can reject them with context.
func ParseSide(s string) Side {
	return Side(strings.ToUpper(strings.TrimSpace(s)))
}

// Sign is +1 for sells and -1 for buys.
func (s Side) Sign() decimal.Decimal {
	if s == Sell {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// TradeCandidate is a normalized fill handed over by a connector or parser.
// It is not persisted as-is; Ingest turns accepted candidates into Trades.
type TradeCandidate struct {
	Symbol   string          `json:"symbol" yaml:"symbol"`
	Side     Side            `json:"side" yaml:"side"`
	Quantity decimal.Decimal `json:"quantity" yaml:"quantity"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
	TradeTS  time.Time       `json:"trade_ts" yaml:"trade_ts"`
	OrderID  string          `json:"order_id,omitempty" yaml:"order_id,omitempty"`
	Fee      decimal.Decimal `json:"fee,omitempty" yaml:"fee,omitempty"`
	Tax      decimal.Decimal `json:"tax,omitempty" yaml:"tax,omitempty"`
	Venue    string          `json:"venue,omitempty" yaml:"venue,omitempty"`
	Raw      map[string]any  `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Validate reports the first reason c cannot enter the ledger.
func (c TradeCandidate) Validate() error {
	switch {
	case strings.TrimSpace(c.Symbol) == "":
		return fmt.Errorf("%w: symbol is required", ErrInvalidCandidate)
	case !c.Side.Valid():
		return fmt.Errorf("%w: side %q must be BUY or SELL", ErrInvalidCandidate, c.Side)
	case !c.Quantity.IsPositive():
		return fmt.Errorf("%w: quantity %s must be positive", ErrInvalidCandidate, c.Quantity)
	case !c.Price.IsPositive():
		return fmt.Errorf("%w: price %s must be positive", ErrInvalidCandidate, c.Price)
	case c.Fee.IsNegative():
		return fmt.Errorf("%w: fee %s must not be negative", ErrInvalidCandidate, c.Fee)
	case c.Tax.IsNegative():
		return fmt.Errorf("%w: tax %s must not be negative", ErrInvalidCandidate, c.Tax)
	case c.TradeTS.IsZero():
		return fmt.Errorf("%w: trade timestamp is required", ErrInvalidCandidate)
	case !Storable(c.TradeTS):
		return fmt.Errorf("%w: trade timestamp %s is out of range", ErrInvalidCandidate, c.TradeTS.Format(time.RFC3339))
	}
	if len(c.Raw) > 0 {
		if _, err := json.Marshal(c.Raw); err != nil {
			return fmt.Errorf("%w: raw payload: %v", ErrInvalidCandidate, err)
		}
	}
	return nil
}

// NaturalKey identifies a logically distinct trade independent of its
// surrogate id.
type NaturalKey struct {
	AccountID string
	OrderID   string
	TradeTS   int64 // unix nanoseconds, UTC
	Price     string
	Quantity  string
}

func (c TradeCandidate) NaturalKey(accountID string) NaturalKey {
	return NaturalKey{
		AccountID: accountID,
		OrderID:   c.OrderID,
		TradeTS:   c.TradeTS.UnixNano(),
		Price:     c.Price.String(),
		Quantity:  c.Quantity.String(),
	}
}

// Trade is a stored ledger row. It is immutable once written apart from
// strategy tags.
type Trade struct {
	ID        string
	AccountID string
	SymbolID  string
	Ticker    string
	Side      Side
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	TradeTS   time.Time
	OrderID   string
	Fee       decimal.Decimal
	Tax       decimal.Decimal
	Venue     string
	Raw       map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NetPnL is the signed cash flow of the trade after fee and tax.
func (t Trade) NetPnL() decimal.Decimal {
	return NetPnL(t.Side, t.Quantity, t.Price, t.Fee, t.Tax)
}

// NetPnL returns price*qty signed by side, minus fee and tax.
func NetPnL(side Side, qty, price, fee, tax decimal.Decimal) decimal.Decimal {
	return price.Mul(qty).Mul(side.Sign()).Sub(fee).Sub(tax)
}

// Symbol is a canonical tradable instrument.
type Symbol struct {
	ID         string
	Ticker     string
	Exchange   string
	AssetClass string
	LotSize    int
	CreatedAt  time.Time
}

// SymbolDefaults fill in a Symbol created on first sight of a ticker.
type SymbolDefaults struct {
	Exchange   string
	AssetClass string
	LotSize    int
}

// Account owns trades and equity points.
type Account struct {
	ID        string
	Code      string
	Currency  string
	Nickname  string
	CreatedAt time.Time
}

// Strategy is a tag trades can be grouped under.
type Strategy struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// EquityPoint is one calendar date of an account's equity curve.
type EquityPoint struct {
	AccountID string
	Date      time.Time // midnight UTC of the civil date
	Equity    decimal.Decimal
	NetPnL    decimal.Decimal
}

// KPIs is the metric set computed over a trade set. Nullable fields are
// invalid when the metric is undefined for the input.
type KPIs struct {
	TotalTrades  int
	Wins         int
	Losses       int
	NetPnL       decimal.Decimal
	WinRate      decimal.NullDecimal
	AvgWin       decimal.NullDecimal
	AvgLoss      decimal.NullDecimal
	ProfitFactor decimal.NullDecimal
	Expectancy   decimal.NullDecimal
	MaxDrawdown  decimal.NullDecimal
}

// KPIRecord is a persisted KPI snapshot for one scope and period.
type KPIRecord struct {
	Scope Scope
	KPIs
	UpdatedAt time.Time
}
