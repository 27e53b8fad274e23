package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Query ledger trades",
	Long: `Query and display ledger trades as Org-mode entries or CSV.

Examples:
  tradejournal trades show <trade-id>
  tradejournal trades list <account-id> --from 2024-01-01 --to 2024-01-31
  tradejournal trades list <account-id> --strategy <strategy-id> --csv trades.csv`,
}

var tradesShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show a single trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesShow,
}

var tradesListCmd = &cobra.Command{
	Use:   "list <account-id>",
	Short: "List trades of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesList,
}

var (
	tradesFrom     string
	tradesTo       string
	tradesStrategy string
	tradesCSV      string
)

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesShowCmd)
	tradesCmd.AddCommand(tradesListCmd)

	tradesListCmd.Flags().StringVar(&tradesFrom, "from", "", "first day, YYYY-MM-DD")
	tradesListCmd.Flags().StringVar(&tradesTo, "to", "", "last day, YYYY-MM-DD")
	tradesListCmd.Flags().StringVar(&tradesStrategy, "strategy", "", "only trades tagged with this strategy id")
	tradesListCmd.Flags().StringVar(&tradesCSV, "csv", "", "write CSV to this file instead of printing")
}

func runTradesShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.GetTrade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradesList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	from, to, err := dayBounds(a.location(), tradesFrom, tradesTo)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	trades, err := a.store.ListTrades(cmd.Context(), journal.TradeFilter{
		AccountID:  args[0],
		StrategyID: tradesStrategy,
		From:       from,
		To:         to,
	})
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	if tradesCSV != "" {
		f, err := os.Create(tradesCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := journal.NewCSVExporter(f).WriteTrades(trades); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d trades to %s\n", len(trades), tradesCSV)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(trades))
	return nil
}
