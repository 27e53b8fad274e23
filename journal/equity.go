package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReplaceEquity makes the stored curve of accountID equal to points. Each
// date is upserted and dates absent from points are removed, in a single
// transaction, so readers never observe a partial curve.
func (s *Store) ReplaceEquity(ctx context.Context, accountID string, points []EquityPoint) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.stamp()
	keep := make(map[string]bool, len(points))
	for _, p := range points {
		day := FormatDate(p.Date)
		keep[day] = true
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO equity_points (account_id, date, equity, net_pnl_day, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (account_id, date) DO UPDATE SET
				equity = excluded.equity,
				net_pnl_day = excluded.net_pnl_day,
				updated_at = excluded.updated_at`),
			accountID, day, p.Equity.String(), p.NetPnL.String(), now,
		)
		if err != nil {
			return fmt.Errorf("upsert equity %s: %w", day, err)
		}
	}

	stale, err := equityDates(ctx, tx, s.q(`SELECT date FROM equity_points WHERE account_id = ?`), accountID)
	if err != nil {
		return err
	}
	for _, day := range stale {
		if keep[day] {
			continue
		}
		_, err = tx.ExecContext(ctx, s.q(`DELETE FROM equity_points WHERE account_id = ? AND date = ?`), accountID, day)
		if err != nil {
			return fmt.Errorf("delete stale equity %s: %w", day, err)
		}
	}

	return tx.Commit()
}

func equityDates(ctx context.Context, tx *sql.Tx, query, accountID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}

// ListEquity returns stored points for accountID with dates in [from, to],
// ascending. Zero bounds are open.
func (s *Store) ListEquity(ctx context.Context, accountID string, from, to time.Time) ([]EquityPoint, error) {
	query := `
		SELECT account_id, date, equity, net_pnl_day
		FROM equity_points
		WHERE account_id = ?`
	args := []any{accountID}
	if !from.IsZero() {
		query += " AND date >= ?"
		args = append(args, FormatDate(from))
	}
	if !to.IsZero() {
		query += " AND date <= ?"
		args = append(args, FormatDate(to))
	}
	query += " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var (
			p   EquityPoint
			day string
		)
		if err := rows.Scan(&p.AccountID, &day, &p.Equity, &p.NetPnL); err != nil {
			return nil, err
		}
		if p.Date, err = ParseDate(day); err != nil {
			return nil, fmt.Errorf("stored equity date %q: %w", day, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
