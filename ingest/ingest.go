// Package ingest merges normalized trade candidates into the ledger.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
)

// Store is the ledger capability the ingester needs.
type Store interface {
	GetAccount(ctx context.Context, accountID string) (journal.Account, error)
	ResolveSymbol(ctx context.Context, ticker string, def journal.SymbolDefaults) (journal.Symbol, error)
	InsertTrade(ctx context.Context, t *journal.Trade) (bool, error)
}

// EquityRefresher recomputes an account's stored equity curve.
type EquityRefresher interface {
	RefreshEquity(ctx context.Context, accountID string) ([]journal.EquityPoint, error)
}

// DefaultSymbol is used for tickers seen for the first time.
var DefaultSymbol = journal.SymbolDefaults{
	Exchange:   "TWSE",
	AssetClass: "stock",
	LotSize:    1000,
}

type Option func(*Ingester)

// WithSymbolDefaults overrides the attributes of lazily created symbols.
func WithSymbolDefaults(def journal.SymbolDefaults) Option {
	return func(in *Ingester) {
		in.symbols = def
	}
}

// WithEquityRefresh recomputes the account's equity curve after every
// ingestion that inserted at least one trade.
func WithEquityRefresh(r EquityRefresher) Option {
	return func(in *Ingester) {
		in.refresher = r
	}
}

// Ingester is the trade deduplicator/upserter.
type Ingester struct {
	store     Store
	logger    *zap.Logger
	symbols   journal.SymbolDefaults
	refresher EquityRefresher
}

func New(store Store, logger *zap.Logger, opts ...Option) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	in := &Ingester{
		store:   store,
		logger:  logger,
		symbols: DefaultSymbol,
	}
	for _, o := range opts {
		o(in)
	}
	return in
}

// Ingest writes every valid candidate not already in the ledger and returns
// how many rows were inserted. Candidates sharing a natural key with an
// existing trade or an earlier candidate of the batch are skipped, so
// re-ingesting the same statement inserts nothing. Malformed candidates,
// including raw payloads that cannot be encoded, are logged and skipped. A storage error
// stops the batch; trades written before it stay committed.
func (in *Ingester) Ingest(ctx context.Context, accountID string, candidates []journal.TradeCandidate) (int, error) {
	log := in.logger.With(zap.String("account_id", accountID))

	if _, err := in.store.GetAccount(ctx, accountID); err != nil {
		return 0, err
	}

	resolver := newResolver(in.store, in.symbols)
	seen := make(map[journal.NaturalKey]bool, len(candidates))
	var inserted, duplicates, rejected int
	for i, c := range candidates {
		c = normalize(c)
		if err := c.Validate(); err != nil {
			rejected++
			log.Warn("rejected trade candidate", zap.Int("index", i), zap.Error(err))
			continue
		}

		key := c.NaturalKey(accountID)
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true

		sym, err := resolver.resolve(ctx, c.Symbol)
		if err != nil {
			return inserted, fmt.Errorf("resolve symbol %q: %w", c.Symbol, err)
		}

		t := &journal.Trade{
			AccountID: accountID,
			SymbolID:  sym.ID,
			Ticker:    sym.Ticker,
			Side:      c.Side,
			Quantity:  c.Quantity,
			Price:     c.Price,
			TradeTS:   c.TradeTS,
			OrderID:   c.OrderID,
			Fee:       c.Fee,
			Tax:       c.Tax,
			Venue:     c.Venue,
			Raw:       c.Raw,
		}
		ok, err := in.store.InsertTrade(ctx, t)
		if err != nil {
			return inserted, err
		}
		if !ok {
			duplicates++
			continue
		}
		inserted++
	}

	log.Info("ingested trades",
		zap.Int("candidates", len(candidates)),
		zap.Int("inserted", inserted),
		zap.Int("duplicates", duplicates),
		zap.Int("rejected", rejected),
	)

	if inserted > 0 && in.refresher != nil {
		if _, err := in.refresher.RefreshEquity(ctx, accountID); err != nil {
			return inserted, fmt.Errorf("refresh equity: %w", err)
		}
	}
	return inserted, nil
}

// normalize upper-cases the side. Symbol and order id are kept verbatim:
// they take part in exact-match lookups.
func normalize(c journal.TradeCandidate) journal.TradeCandidate {
	c.Side = journal.ParseSide(string(c.Side))
	return c
}
