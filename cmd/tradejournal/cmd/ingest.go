package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/journal"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <account-id> <candidates-file>",
	Short: "Merge normalized trade candidates into the ledger",
	Long: `Read a YAML (or JSON) list of trade candidates and insert the ones not
already in the ledger. Re-running with the same file inserts nothing.

Each candidate has symbol, side (BUY|SELL), quantity, price, trade_ts
(RFC 3339) and optional order_id, fee, tax, venue and raw fields.

Example:
  tradejournal ingest 01HV3Z8Q9G7XKQ2M4N5P6R7S8T fills.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func readCandidates(path string) ([]journal.TradeCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	var cands []journal.TradeCandidate
	if err := yaml.Unmarshal(data, &cands); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}
	return cands, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cands, err := readCandidates(args[1])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.ingester().Ingest(cmd.Context(), args[0], cands)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Inserted %d of %d candidates\n", n, len(cands))
	return nil
}
