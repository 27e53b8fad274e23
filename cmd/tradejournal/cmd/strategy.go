package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Manage strategies and trade tags",
	Long: `Strategies group trades for KPI reporting. A trade may carry any number
of strategy tags.

Examples:
  tradejournal strategy add --name breakout
  tradejournal strategy tag <trade-id> <strategy-id>`,
}

var strategyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a strategy",
	Args:  cobra.NoArgs,
	RunE:  runStrategyAdd,
}

var strategyTagCmd = &cobra.Command{
	Use:   "tag <trade-id> <strategy-id>",
	Short: "Tag a trade with a strategy",
	Args:  cobra.ExactArgs(2),
	RunE:  runStrategyTag,
}

var strategyName string

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyAddCmd)
	strategyCmd.AddCommand(strategyTagCmd)

	strategyAddCmd.Flags().StringVar(&strategyName, "name", "", "strategy name (required)")
	_ = strategyAddCmd.MarkFlagRequired("name")
}

func runStrategyAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.store.CreateStrategy(cmd.Context(), journal.Strategy{Name: strategyName})
	if err != nil {
		return fmt.Errorf("create strategy: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created strategy %s: %s\n", st.Name, st.ID)
	return nil
}

func runStrategyTag(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.TagTrade(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("tag trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Tagged trade %s with %s\n", args[0], args[1])
	return nil
}
