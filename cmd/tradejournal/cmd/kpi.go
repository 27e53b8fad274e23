package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Refresh and display KPI snapshots",
	Long: `KPI snapshots are stored per scope (account, strategy, account_month,
strategy_month), reference id and period. Refreshing the same scope again
replaces the stored row.

Examples:
  tradejournal kpi refresh --scope account --ref <account-id> --start 2024-01-01 --end 2024-12-31
  tradejournal kpi refresh --scope strategy --ref <strategy-id> --month 2024-03
  tradejournal kpi show --scope account_month --ref <account-id> --month 2024-03`,
}

var kpiRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute and store a KPI snapshot",
	Args:  cobra.NoArgs,
	RunE:  runKPIRefresh,
}

var kpiShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored KPI snapshot",
	Args:  cobra.NoArgs,
	RunE:  runKPIShow,
}

var (
	kpiScope string
	kpiRef   string
	kpiStart string
	kpiEnd   string
	kpiMonth string
	kpiOrg   string
)

func init() {
	rootCmd.AddCommand(kpiCmd)
	kpiCmd.AddCommand(kpiRefreshCmd)
	kpiCmd.AddCommand(kpiShowCmd)

	for _, c := range []*cobra.Command{kpiRefreshCmd, kpiShowCmd} {
		c.Flags().StringVar(&kpiScope, "scope", "account", "account, strategy, account_month or strategy_month")
		c.Flags().StringVar(&kpiRef, "ref", "", "account or strategy id (required)")
		c.Flags().StringVar(&kpiStart, "start", "", "first day, YYYY-MM-DD")
		c.Flags().StringVar(&kpiEnd, "end", "", "last day, YYYY-MM-DD")
		c.Flags().StringVar(&kpiMonth, "month", "", "calendar month, YYYY-MM (selects the monthly scope)")
		_ = c.MarkFlagRequired("ref")
	}
	kpiRefreshCmd.Flags().StringVar(&kpiOrg, "org", "", "also write the snapshot as Org-mode to this file")
}

// kpiScopeFromFlags builds the scope named by the command line. --month
// switches account and strategy to their monthly kinds.
func kpiScopeFromFlags(loc *time.Location) (journal.Scope, error) {
	kind, err := journal.ParseScopeKind(kpiScope)
	if err != nil {
		return journal.Scope{}, err
	}

	if kpiMonth != "" {
		m, err := time.ParseInLocation("2006-01", kpiMonth, loc)
		if err != nil {
			return journal.Scope{}, fmt.Errorf("month: %w", err)
		}
		switch kind {
		case journal.ScopeAccount:
			kind = journal.ScopeAccountMonth
		case journal.ScopeStrategy:
			kind = journal.ScopeStrategyMonth
		}
		return journal.Scope{
			Kind:   kind,
			RefID:  kpiRef,
			Period: journal.MonthPeriod(m.Year(), m.Month(), loc),
		}, nil
	}

	if kpiStart == "" || kpiEnd == "" {
		return journal.Scope{}, fmt.Errorf("either --month or both --start and --end are required")
	}
	start, end, err := dayBounds(loc, kpiStart, kpiEnd)
	if err != nil {
		return journal.Scope{}, err
	}
	return journal.Scope{
		Kind:   kind,
		RefID:  kpiRef,
		Period: journal.Period{Start: start, End: end},
	}, nil
}

func runKPIRefresh(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	scope, err := kpiScopeFromFlags(a.location())
	if err != nil {
		return err
	}

	rec, err := a.refresher().RefreshKPIs(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("refresh kpis: %w", err)
	}

	if kpiOrg != "" {
		if err := journal.WriteKPIOrg(kpiOrg, rec); err != nil {
			return fmt.Errorf("write org: %w", err)
		}
	}
	return printKPI(cmd, rec)
}

func runKPIShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	scope, err := kpiScopeFromFlags(a.location())
	if err != nil {
		return err
	}

	rec, err := a.store.GetKPI(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("get kpis: %w", err)
	}
	return printKPI(cmd, rec)
}

func printKPI(cmd *cobra.Command, rec journal.KPIRecord) error {
	s, err := journal.FormatKPIOrg(rec)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}
