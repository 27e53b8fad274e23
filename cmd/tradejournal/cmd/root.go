package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/ingest"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/refresh"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A personal trading journal with equity curves and KPIs",
	Long: `Tradejournal keeps a deduplicated ledger of executed trades and derives
daily equity curves, drawdowns and performance KPIs from it.

It provides tools for:
  - Registering accounts and strategies
  - Ingesting normalized trade candidates idempotently
  - Refreshing and exporting equity curves
  - Refreshing KPI snapshots per account, strategy and month`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (defaults are used when empty)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

// app is the wiring shared by every command that touches the ledger.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *journal.Store
	loc   *time.Location
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	store, err := journal.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &app{cfg: cfg, log: log, store: store, loc: loc}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	_ = a.log.Sync()
}

func (a *app) refresher() *refresh.Refresher {
	var opts []refresh.Option
	if a.loc != nil {
		opts = append(opts, refresh.WithLocation(a.loc))
	}
	return refresh.New(a.store, a.log, opts...)
}

func (a *app) ingester() *ingest.Ingester {
	opts := []ingest.Option{
		ingest.WithSymbolDefaults(journal.SymbolDefaults{
			Exchange:   a.cfg.Ledger.Exchange,
			AssetClass: a.cfg.Ledger.AssetClass,
			LotSize:    a.cfg.Ledger.LotSize,
		}),
	}
	if a.cfg.Ledger.RefreshEquityOnIngest {
		opts = append(opts, ingest.WithEquityRefresh(a.refresher()))
	}
	return ingest.New(a.store, a.log, opts...)
}

// location returns the zone used to interpret command line dates.
func (a *app) location() *time.Location {
	if a.loc == nil {
		return time.UTC
	}
	return a.loc
}

// dayBounds returns the closed interval covering the civil dates from and
// to in loc. Empty strings leave that side open.
func dayBounds(loc *time.Location, from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
		}
		end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}
