// Package refresh recomputes derived equity and KPI rows from the ledger
// and stores them with idempotent upserts.
package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/analytics"
	"github.com/rustyeddy/tradejournal/journal"
)

// Store is the ledger capability the refresher needs.
type Store interface {
	GetAccount(ctx context.Context, accountID string) (journal.Account, error)
	GetStrategy(ctx context.Context, strategyID string) (journal.Strategy, error)
	ListTrades(ctx context.Context, f journal.TradeFilter) ([]journal.Trade, error)
	ReplaceEquity(ctx context.Context, accountID string, points []journal.EquityPoint) error
	UpsertKPI(ctx context.Context, rec journal.KPIRecord) (journal.KPIRecord, error)
}

type Option func(*Refresher)

// WithLocation buckets trades into calendar dates in loc and aligns
// monthly scopes to loc. Without it trades keep their own zone and months
// align to UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Refresher) {
		r.loc = loc
	}
}

// Refresher rebuilds equity curves and KPI snapshots from the full trade
// history on every call. Re-running with an unchanged ledger rewrites the
// same rows.
type Refresher struct {
	store  Store
	logger *zap.Logger
	loc    *time.Location
}

func New(store Store, logger *zap.Logger, opts ...Option) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Refresher{store: store, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Refresher) curveOptions() []analytics.CurveOption {
	if r.loc == nil {
		return nil
	}
	return []analytics.CurveOption{analytics.WithLocation(r.loc)}
}

func (r *Refresher) monthLocation() *time.Location {
	if r.loc == nil {
		return time.UTC
	}
	return r.loc
}

// RefreshEquity recomputes and stores every equity point of accountID.
func (r *Refresher) RefreshEquity(ctx context.Context, accountID string) ([]journal.EquityPoint, error) {
	if _, err := r.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	trades, err := r.store.ListTrades(ctx, journal.TradeFilter{AccountID: accountID})
	if err != nil {
		return nil, err
	}

	curve := analytics.BuildEquityCurve(trades, r.curveOptions()...)
	for i := range curve {
		curve[i].AccountID = accountID
	}
	if err := r.store.ReplaceEquity(ctx, accountID, curve); err != nil {
		return nil, err
	}

	r.logger.Info("refreshed equity curve",
		zap.String("account_id", accountID),
		zap.Int("trades", len(trades)),
		zap.Int("points", len(curve)),
	)
	return curve, nil
}

// RefreshKPIs recomputes and stores the snapshot for scope.
func (r *Refresher) RefreshKPIs(ctx context.Context, scope journal.Scope) (journal.KPIRecord, error) {
	if err := scope.Validate(r.monthLocation()); err != nil {
		return journal.KPIRecord{}, err
	}

	filter := journal.TradeFilter{
		From: scope.Period.Start,
		To:   scope.Period.End,
	}
	if scope.Kind.ByStrategy() {
		if _, err := r.store.GetStrategy(ctx, scope.RefID); err != nil {
			return journal.KPIRecord{}, err
		}
		filter.StrategyID = scope.RefID
	} else {
		if _, err := r.store.GetAccount(ctx, scope.RefID); err != nil {
			return journal.KPIRecord{}, err
		}
		filter.AccountID = scope.RefID
	}

	trades, err := r.store.ListTrades(ctx, filter)
	if err != nil {
		return journal.KPIRecord{}, err
	}

	rec, err := r.store.UpsertKPI(ctx, journal.KPIRecord{
		Scope: scope,
		KPIs:  analytics.ComputeKPIs(trades, r.curveOptions()...),
	})
	if err != nil {
		return journal.KPIRecord{}, err
	}

	r.logger.Info("refreshed kpis",
		zap.Stringer("scope", scope),
		zap.Int("trades", rec.TotalTrades),
	)
	return rec, nil
}

// RefreshMonth refreshes the monthly variant of an account or strategy
// scope for year/month.
func (r *Refresher) RefreshMonth(ctx context.Context, kind journal.ScopeKind, refID string, year int, month time.Month) (journal.KPIRecord, error) {
	switch kind {
	case journal.ScopeAccount:
		kind = journal.ScopeAccountMonth
	case journal.ScopeStrategy:
		kind = journal.ScopeStrategyMonth
	}
	return r.RefreshKPIs(ctx, journal.Scope{
		Kind:   kind,
		RefID:  refID,
		Period: journal.MonthPeriod(year, month, r.monthLocation()),
	})
}
