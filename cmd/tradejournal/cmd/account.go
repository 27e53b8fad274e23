package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage trading accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a trading account",
	Args:  cobra.NoArgs,
	RunE:  runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

var (
	accountCode     string
	accountCurrency string
	accountNickname string
)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)

	accountAddCmd.Flags().StringVar(&accountCode, "code", "", "broker account code (required)")
	accountAddCmd.Flags().StringVar(&accountCurrency, "currency", "TWD", "account currency")
	accountAddCmd.Flags().StringVar(&accountNickname, "nickname", "", "display name")
	_ = accountAddCmd.MarkFlagRequired("code")
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.store.CreateAccount(cmd.Context(), journal.Account{
		Code:     accountCode,
		Currency: accountCurrency,
		Nickname: accountNickname,
	})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created account %s: %s\n", acct.Code, acct.ID)
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	accts, err := a.store.ListAccounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, acct := range accts {
		fmt.Fprintf(out, "%s  %-12s %s  %s\n", acct.ID, acct.Code, acct.Currency, acct.Nickname)
	}
	return nil
}
