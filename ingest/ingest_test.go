package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/tradejournal/analytics"
	"github.com/rustyeddy/tradejournal/journal"
)

func newStore(t *testing.T) *journal.Store {
	t.Helper()

	s, err := journal.NewSQLite(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAccount(t *testing.T, s *journal.Store) string {
	t.Helper()

	a, err := s.CreateAccount(context.Background(), journal.Account{Code: "TW-1"})
	require.NoError(t, err)
	return a.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var base = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

func candidate(symbol string, side journal.Side, qty, price string, ts time.Time, orderID string) journal.TradeCandidate {
	return journal.TradeCandidate{
		Symbol:   symbol,
		Side:     side,
		Quantity: dec(qty),
		Price:    dec(price),
		TradeTS:  ts,
		OrderID:  orderID,
	}
}

// statement builds n fills alternating buys and sells across three tickers.
func statement(n int, start time.Time) []journal.TradeCandidate {
	tickers := []string{"2330.TW", "2317.TW", "0050.TW"}
	out := make([]journal.TradeCandidate, 0, n)
	for i := 0; i < n; i++ {
		side := journal.Buy
		if i%2 == 1 {
			side = journal.Sell
		}
		c := candidate(tickers[i%len(tickers)], side, "1000", fmt.Sprintf("%d.5", 100+i), start.Add(time.Duration(i)*time.Hour), fmt.Sprintf("ORD-%03d", i))
		c.Fee = dec("20")
		out = append(out, c)
	}
	return out
}

func ledgerKeys(t *testing.T, s *journal.Store, accountID string) []string {
	t.Helper()

	trades, err := s.ListTrades(context.Background(), journal.TradeFilter{AccountID: accountID})
	require.NoError(t, err)
	keys := make([]string, 0, len(trades))
	for _, tr := range trades {
		keys = append(keys, fmt.Sprintf("%s|%d|%s|%s|%s", tr.OrderID, tr.TradeTS.UnixNano(), tr.Price, tr.Quantity, tr.Side))
	}
	sort.Strings(keys)
	return keys
}

func TestIngestIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	in := New(s, zap.NewNop())
	ctx := context.Background()

	batch := []journal.TradeCandidate{
		candidate("2330.TW", journal.Buy, "1000", "600", base, "A1"),
		candidate("2330.TW", journal.Sell, "1000", "610", base.Add(time.Hour), "A2"),
	}

	n, err := in.Ingest(ctx, acct, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = in.Ingest(ctx, acct, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Len(t, ledgerKeys(t, s, acct), 2)
}

func TestIngestDuplicateWithinBatch(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	c := candidate("AAPL", journal.Buy, "10", "170", base, "")

	n, err := New(s, nil).Ingest(context.Background(), acct, []journal.TradeCandidate{c, c})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	batch := statement(12, base)
	reversed := make([]journal.TradeCandidate, len(batch))
	for i, c := range batch {
		reversed[len(batch)-1-i] = c
	}

	forward := newStore(t)
	backward := newStore(t)
	fa := newAccount(t, forward)
	ba := newAccount(t, backward)

	_, err := New(forward, nil).Ingest(context.Background(), fa, batch)
	require.NoError(t, err)
	_, err = New(backward, nil).Ingest(context.Background(), ba, reversed)
	require.NoError(t, err)

	assert.Equal(t, ledgerKeys(t, forward, fa), ledgerKeys(t, backward, ba))

	ft, err := forward.ListTrades(context.Background(), journal.TradeFilter{AccountID: fa})
	require.NoError(t, err)
	bt, err := backward.ListTrades(context.Background(), journal.TradeFilter{AccountID: ba})
	require.NoError(t, err)

	fc := analytics.BuildEquityCurve(ft)
	bc := analytics.BuildEquityCurve(bt)
	require.Equal(t, len(fc), len(bc))
	for i := range fc {
		assert.Equal(t, fc[i].Date, bc[i].Date)
		assert.True(t, fc[i].Equity.Equal(bc[i].Equity))
	}
}

func TestIngestOverlappingStatements(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	in := New(s, nil)
	ctx := context.Background()

	first := statement(30, base)
	n, err := in.Ingest(ctx, acct, first)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	n, err = in.Ingest(ctx, acct, first)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// The next statement repeats the last ten rows of the first one.
	next := append([]journal.TradeCandidate{}, first[20:]...)
	next = append(next, statement(20, base.AddDate(0, 0, 5))...)

	n, err = in.Ingest(ctx, acct, next)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Len(t, ledgerKeys(t, s, acct), 50)
}

func TestIngestSkipsMalformed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	s := newStore(t)
	acct := newAccount(t, s)

	bad := candidate("2330.TW", journal.Buy, "0", "600", base, "X")
	noSymbol := candidate("", journal.Sell, "1", "600", base, "Y")
	good := candidate("2330.TW", journal.Buy, "1000", "600", base, "Z")

	n, err := New(s, zap.New(core)).Ingest(context.Background(), acct, []journal.TradeCandidate{bad, noSymbol, good})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	warns := logs.FilterMessage("rejected trade candidate").All()
	assert.Len(t, warns, 2)

	summary := logs.FilterMessage("ingested trades").All()
	require.Len(t, summary, 1)
	fields := summary[0].ContextMap()
	assert.EqualValues(t, 3, fields["candidates"])
	assert.EqualValues(t, 1, fields["inserted"])
	assert.EqualValues(t, 2, fields["rejected"])
	assert.Equal(t, acct, fields["account_id"])
}

func TestIngestSkipsUnencodableRaw(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	s := newStore(t)
	acct := newAccount(t, s)

	before := candidate("2330.TW", journal.Buy, "1000", "600", base, "G1")
	bad := candidate("2330.TW", journal.Sell, "1000", "610", base.Add(time.Hour), "B1")
	bad.Raw = map[string]any{"legs": map[any]any{1: "a"}}
	after := candidate("2330.TW", journal.Sell, "1000", "620", base.Add(2*time.Hour), "G2")

	n, err := New(s, zap.New(core)).Ingest(context.Background(), acct, []journal.TradeCandidate{before, bad, after})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	warns := logs.FilterMessage("rejected trade candidate").All()
	require.Len(t, warns, 1)
	assert.EqualValues(t, 1, warns[0].ContextMap()["index"])

	summary := logs.FilterMessage("ingested trades").All()
	require.Len(t, summary, 1)
	assert.EqualValues(t, 1, summary[0].ContextMap()["rejected"])
	assert.Len(t, ledgerKeys(t, s, acct), 2)
}

func TestIngestSkipsUnstorableTimestamp(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	far := candidate("2330.TW", journal.Buy, "1", "600", time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), "F1")
	good := candidate("2330.TW", journal.Buy, "1", "600", base, "F2")

	n, err := New(s, nil).Ingest(context.Background(), acct, []journal.TradeCandidate{far, good})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestNormalizesSide(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	c := candidate("2330.TW", "sell", "1", "600", base, "")

	n, err := New(s, nil).Ingest(context.Background(), acct, []journal.TradeCandidate{c})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	trades, err := s.ListTrades(context.Background(), journal.TradeFilter{AccountID: acct})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, journal.Sell, trades[0].Side)
}

func TestIngestUnknownAccount(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	n, err := New(s, nil).Ingest(context.Background(), "missing", statement(1, base))
	assert.ErrorIs(t, err, journal.ErrNotFound)
	assert.Equal(t, 0, n)
}

func TestIngestUsesSymbolDefaults(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	def := journal.SymbolDefaults{Exchange: "NASDAQ", AssetClass: "stock", LotSize: 1}

	_, err := New(s, nil, WithSymbolDefaults(def)).Ingest(context.Background(), acct,
		[]journal.TradeCandidate{candidate("AAPL", journal.Buy, "1", "170", base, "")})
	require.NoError(t, err)

	sym, err := s.FindSymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "NASDAQ", sym.Exchange)
	assert.Equal(t, 1, sym.LotSize)
}

type countingRefresher struct {
	calls []string
	err   error
}

func (r *countingRefresher) RefreshEquity(_ context.Context, accountID string) ([]journal.EquityPoint, error) {
	r.calls = append(r.calls, accountID)
	return nil, r.err
}

func TestIngestRefreshesEquityOnInsert(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	r := &countingRefresher{}
	in := New(s, nil, WithEquityRefresh(r))
	batch := statement(3, base)

	_, err := in.Ingest(context.Background(), acct, batch)
	require.NoError(t, err)
	_, err = in.Ingest(context.Background(), acct, batch)
	require.NoError(t, err)

	assert.Equal(t, []string{acct}, r.calls)
}

func TestIngestReportsRefreshError(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	acct := newAccount(t, s)
	boom := errors.New("boom")

	n, err := New(s, nil, WithEquityRefresh(&countingRefresher{err: boom})).
		Ingest(context.Background(), acct, statement(2, base))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
}

// fakeStore fails InsertTrade after a fixed number of rows.
type fakeStore struct {
	failAfter int
	inserted  int
	resolves  map[string]int
}

func (f *fakeStore) GetAccount(_ context.Context, accountID string) (journal.Account, error) {
	return journal.Account{ID: accountID}, nil
}

func (f *fakeStore) ResolveSymbol(_ context.Context, ticker string, def journal.SymbolDefaults) (journal.Symbol, error) {
	if f.resolves == nil {
		f.resolves = map[string]int{}
	}
	f.resolves[ticker]++
	return journal.Symbol{ID: "sym-" + ticker, Ticker: ticker, Exchange: def.Exchange}, nil
}

func (f *fakeStore) InsertTrade(_ context.Context, _ *journal.Trade) (bool, error) {
	if f.inserted >= f.failAfter {
		return false, errors.New("disk full")
	}
	f.inserted++
	return true, nil
}

func TestIngestStopsOnStoreError(t *testing.T) {
	t.Parallel()

	f := &fakeStore{failAfter: 2}
	n, err := New(f, nil).Ingest(context.Background(), "acct", statement(5, base))
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 2, n)
}

func TestIngestDropsBatchDuplicatesBeforeStore(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	f := &fakeStore{failAfter: 100}
	batch := statement(3, base)
	again := batch[0]
	again.Price = dec(again.Price.String() + "0")
	batch = append(batch, again)

	n, err := New(f, zap.New(core)).Ingest(context.Background(), "acct", batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, f.inserted)

	summary := logs.FilterMessage("ingested trades").All()
	require.Len(t, summary, 1)
	assert.EqualValues(t, 1, summary[0].ContextMap()["duplicates"])
}

func TestResolverMemoizesPerCall(t *testing.T) {
	t.Parallel()

	f := &fakeStore{failAfter: 100}
	in := New(f, nil)

	_, err := in.Ingest(context.Background(), "acct", statement(9, base))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2330.TW": 1, "2317.TW": 1, "0050.TW": 1}, f.resolves)

	_, err = in.Ingest(context.Background(), "acct", statement(3, base))
	require.NoError(t, err)
	assert.Equal(t, 2, f.resolves["2330.TW"])
}
