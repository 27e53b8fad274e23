package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertKPI writes or replaces the snapshot keyed by rec.Scope and returns
// the stored row.
func (s *Store) UpsertKPI(ctx context.Context, rec KPIRecord) (KPIRecord, error) {
	sc := rec.Scope
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO kpis
		(scope, scope_ref_id, period_start, period_end,
		 win_rate, avg_win, avg_loss, profit_factor, expectancy, max_drawdown,
		 total_trades, wins, losses, net_pnl, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (scope, scope_ref_id, period_start, period_end) DO UPDATE SET
			win_rate = excluded.win_rate,
			avg_win = excluded.avg_win,
			avg_loss = excluded.avg_loss,
			profit_factor = excluded.profit_factor,
			expectancy = excluded.expectancy,
			max_drawdown = excluded.max_drawdown,
			total_trades = excluded.total_trades,
			wins = excluded.wins,
			losses = excluded.losses,
			net_pnl = excluded.net_pnl,
			updated_at = excluded.updated_at`),
		string(sc.Kind), sc.RefID, sc.Period.Start.UnixNano(), sc.Period.End.UnixNano(),
		rec.WinRate, rec.AvgWin, rec.AvgLoss, rec.ProfitFactor, rec.Expectancy, rec.MaxDrawdown,
		rec.TotalTrades, rec.Wins, rec.Losses, rec.NetPnL.String(), s.stamp(),
	)
	if err != nil {
		return KPIRecord{}, fmt.Errorf("upsert kpi %s: %w", sc, err)
	}
	return s.GetKPI(ctx, sc)
}

// GetKPI returns the snapshot stored for sc. Period bounds come back in
// the location of sc.Period.
func (s *Store) GetKPI(ctx context.Context, sc Scope) (KPIRecord, error) {
	var (
		rec     KPIRecord
		updated int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT win_rate, avg_win, avg_loss, profit_factor, expectancy, max_drawdown,
		       total_trades, wins, losses, net_pnl, updated_at
		FROM kpis
		WHERE scope = ? AND scope_ref_id = ? AND period_start = ? AND period_end = ?`),
		string(sc.Kind), sc.RefID, sc.Period.Start.UnixNano(), sc.Period.End.UnixNano(),
	).Scan(
		&rec.WinRate, &rec.AvgWin, &rec.AvgLoss, &rec.ProfitFactor, &rec.Expectancy, &rec.MaxDrawdown,
		&rec.TotalTrades, &rec.Wins, &rec.Losses, &rec.NetPnL, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return KPIRecord{}, fmt.Errorf("kpi %s: %w", sc, ErrNotFound)
		}
		return KPIRecord{}, err
	}
	rec.Scope = sc
	rec.UpdatedAt = fromNanos(updated)
	return rec, nil
}

// CountKPIs returns the number of stored snapshots for kind and refID.
func (s *Store) CountKPIs(ctx context.Context, kind ScopeKind, refID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT COUNT(*) FROM kpis WHERE scope = ? AND scope_ref_id = ?`),
		string(kind), refID).Scan(&n)
	return n, err
}
