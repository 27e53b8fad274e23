package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/analytics"
	"github.com/rustyeddy/tradejournal/journal"
)

var equityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Refresh and display daily equity curves",
	Long: `Equity curves are rebuilt from the full trade history of an account and
stored one row per calendar day.

Examples:
  tradejournal equity refresh <account-id>
  tradejournal equity show <account-id> --from 2024-01-01 --csv equity.csv`,
}

var equityRefreshCmd = &cobra.Command{
	Use:   "refresh <account-id>",
	Short: "Recompute and store the equity curve",
	Args:  cobra.ExactArgs(1),
	RunE:  runEquityRefresh,
}

var equityShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Print the stored equity curve and its drawdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runEquityShow,
}

var (
	equityFrom string
	equityTo   string
	equityCSV  string
)

func init() {
	rootCmd.AddCommand(equityCmd)
	equityCmd.AddCommand(equityRefreshCmd)
	equityCmd.AddCommand(equityShowCmd)

	equityShowCmd.Flags().StringVar(&equityFrom, "from", "", "first day, YYYY-MM-DD")
	equityShowCmd.Flags().StringVar(&equityTo, "to", "", "last day, YYYY-MM-DD")
	equityShowCmd.Flags().StringVar(&equityCSV, "csv", "", "also write the curve as CSV to this file")
}

func runEquityRefresh(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	curve, err := a.refresher().RefreshEquity(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("refresh equity: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %d equity points\n", len(curve))
	return nil
}

func runEquityShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Equity rows hold civil dates, so bounds are parsed in UTC.
	start, end, err := dayBounds(time.UTC, equityFrom, equityTo)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	points, err := a.store.ListEquity(cmd.Context(), args[0], start, end)
	if err != nil {
		return fmt.Errorf("list equity: %w", err)
	}

	if equityCSV != "" {
		f, err := os.Create(equityCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := journal.NewCSVExporter(f).WriteEquity(points); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, journal.FormatEquityOrg(points))

	dd := analytics.ComputeDrawdown(points)
	if dd.Trough != nil {
		fmt.Fprintf(out, "\nMax drawdown: %s (%s -> %s)\n",
			dd.Max.StringFixed(2), journal.FormatDate(*dd.Peak), journal.FormatDate(*dd.Trough))
	}
	return nil
}
