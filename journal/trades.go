package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// FindSymbol returns the earliest symbol whose ticker matches exactly.
func (s *Store) FindSymbol(ctx context.Context, ticker string) (Symbol, error) {
	var (
		sym     Symbol
		created int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, ticker, exchange, asset_class, lot_size, created_at
		FROM symbols
		WHERE ticker = ?
		ORDER BY id ASC
		LIMIT 1`), ticker).Scan(&sym.ID, &sym.Ticker, &sym.Exchange, &sym.AssetClass, &sym.LotSize, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Symbol{}, fmt.Errorf("symbol %q: %w", ticker, ErrNotFound)
		}
		return Symbol{}, err
	}
	sym.CreatedAt = fromNanos(created)
	return sym, nil
}

// ResolveSymbol returns the symbol for ticker, creating it with def on
// first sight. Lookup is case-sensitive on ticker alone; callers cannot
// disambiguate by exchange.
func (s *Store) ResolveSymbol(ctx context.Context, ticker string, def SymbolDefaults) (Symbol, error) {
	sym, err := s.FindSymbol(ctx, ticker)
	if err == nil {
		return sym, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Symbol{}, err
	}

	if def.LotSize <= 0 {
		def.LotSize = 1
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO symbols (id, ticker, exchange, asset_class, lot_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, exchange) DO NOTHING`),
		id.New(), ticker, def.Exchange, def.AssetClass, def.LotSize, s.stamp(),
	)
	if err != nil {
		return Symbol{}, fmt.Errorf("insert symbol %q: %w", ticker, err)
	}

	// Re-read so a concurrent creator's row wins.
	return s.FindSymbol(ctx, ticker)
}

// InsertTrade writes t unless a trade with the same natural key exists.
// It reports whether a row was inserted; a duplicate is not an error.
func (s *Store) InsertTrade(ctx context.Context, t *Trade) (bool, error) {
	if t.ID == "" {
		t.ID = id.New()
	}

	var raw sql.NullString
	if len(t.Raw) > 0 {
		b, err := json.Marshal(t.Raw)
		if err != nil {
			return false, fmt.Errorf("encode raw payload: %w", err)
		}
		raw = sql.NullString{String: string(b), Valid: true}
	}

	_, offset := t.TradeTS.Zone()
	now := s.stamp()
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO trades
		(id, account_id, symbol_id, side, quantity, price, trade_ts, tz_offset,
		 order_id, fee, tax, venue, raw_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, order_id, trade_ts, price, quantity) DO NOTHING`),
		t.ID, t.AccountID, t.SymbolID, string(t.Side), t.Quantity.String(), t.Price.String(),
		t.TradeTS.UnixNano(), offset, t.OrderID, t.Fee.String(), t.Tax.String(), t.Venue, raw,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert trade: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	t.CreatedAt = fromNanos(now)
	t.UpdatedAt = t.CreatedAt
	return true, nil
}

// TradeFilter narrows ListTrades. Zero values mean "no bound".
type TradeFilter struct {
	AccountID  string
	StrategyID string
	From       time.Time
	To         time.Time
}

const tradeColumns = `
	t.id, t.account_id, t.symbol_id, s.ticker, t.side, t.quantity, t.price,
	t.trade_ts, t.tz_offset, t.order_id, t.fee, t.tax, t.venue, t.raw_json,
	t.created_at, t.updated_at`

// ListTrades returns trades matching f ordered by timestamp, then id.
// From and To are inclusive.
func (s *Store) ListTrades(ctx context.Context, f TradeFilter) ([]Trade, error) {
	var (
		where []string
		args  []any
	)
	from := `FROM trades t JOIN symbols s ON s.id = t.symbol_id`
	if f.StrategyID != "" {
		from += ` JOIN trade_tags g ON g.trade_id = t.id`
		where = append(where, "g.strategy_id = ?")
		args = append(args, f.StrategyID)
	}
	if f.AccountID != "" {
		where = append(where, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if !f.From.IsZero() && f.From.After(minInstant) {
		where = append(where, "t.trade_ts >= ?")
		args = append(args, clampNanos(f.From))
	}
	if !f.To.IsZero() && f.To.Before(maxInstant) {
		where = append(where, "t.trade_ts <= ?")
		args = append(args, clampNanos(f.To))
	}

	query := "SELECT" + tradeColumns + " " + from
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.trade_ts ASC, t.id ASC"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade by id.
func (s *Store) GetTrade(ctx context.Context, tradeID string) (Trade, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT`+tradeColumns+`
		FROM trades t JOIN symbols s ON s.id = t.symbol_id
		WHERE t.id = ?`), tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return Trade{}, err
	}
	return t, nil
}

// TagTrade attaches a strategy to a trade. Tagging twice is a no-op.
func (s *Store) TagTrade(ctx context.Context, tradeID, strategyID string) error {
	if _, err := s.GetTrade(ctx, tradeID); err != nil {
		return err
	}
	if _, err := s.GetStrategy(ctx, strategyID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO trade_tags (trade_id, strategy_id)
		VALUES (?, ?)
		ON CONFLICT (trade_id, strategy_id) DO NOTHING`), tradeID, strategyID)
	if err != nil {
		return fmt.Errorf("tag trade: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(r scanner) (Trade, error) {
	var (
		t                Trade
		side             string
		ts, offset       int64
		created, updated int64
		raw              sql.NullString
	)
	err := r.Scan(
		&t.ID, &t.AccountID, &t.SymbolID, &t.Ticker, &side, &t.Quantity, &t.Price,
		&ts, &offset, &t.OrderID, &t.Fee, &t.Tax, &t.Venue, &raw,
		&created, &updated,
	)
	if err != nil {
		return Trade{}, err
	}
	t.Side = Side(side)
	t.TradeTS = time.Unix(0, ts).In(zoneFor(offset))
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(updated)
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &t.Raw); err != nil {
			return Trade{}, fmt.Errorf("decode raw payload of trade %s: %w", t.ID, err)
		}
	}
	return t, nil
}

// clampNanos encodes t, saturating at the representable range.
func clampNanos(t time.Time) int64 {
	switch {
	case t.Before(minInstant):
		return math.MinInt64
	case t.After(maxInstant):
		return math.MaxInt64
	}
	return t.UnixNano()
}

func zoneFor(offset int64) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", int(offset))
}
