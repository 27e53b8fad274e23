package ingest

import (
	"context"

	"github.com/rustyeddy/tradejournal/journal"
)

// resolver memoizes symbol lookups for one ingestion call.
type resolver struct {
	store Store
	def   journal.SymbolDefaults
	seen  map[string]journal.Symbol
}

func newResolver(store Store, def journal.SymbolDefaults) *resolver {
	return &resolver{
		store: store,
		def:   def,
		seen:  make(map[string]journal.Symbol),
	}
}

func (r *resolver) resolve(ctx context.Context, ticker string) (journal.Symbol, error) {
	if sym, ok := r.seen[ticker]; ok {
		return sym, nil
	}
	sym, err := r.store.ResolveSymbol(ctx, ticker, r.def)
	if err != nil {
		return journal.Symbol{}, err
	}
	r.seen[ticker] = sym
	return sym, nil
}
