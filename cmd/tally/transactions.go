package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harborstreet/tally/internal/cli"
	"github.com/harborstreet/tally/internal/storage"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect committed transactions",
	}
	cmd.AddCommand(transactionsShowCmd())
	cmd.AddCommand(transactionsSummaryCmd())
	return cmd
}

func transactionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one committed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store storage.Store) error {
				txn, err := store.GetTransactionByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Println(cli.RenderTransaction(txn))
				return nil
			})
		},
	}
}

func transactionsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals per category across the whole store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(store storage.Store) error {
				txns, err := store.LoadAllTransactions(cmd.Context())
				if err != nil {
					return err
				}
				if len(txns) == 0 {
					fmt.Println(cli.SubtleStyle.Render("No transactions committed yet."))
					return nil
				}

				totals := make(map[string]float64)
				counts := make(map[string]int)
				for _, txn := range txns {
					totals[txn.Category] += txn.Amount
					counts[txn.Category]++
				}

				names := make([]string, 0, len(totals))
				for name := range totals {
					names = append(names, name)
				}
				sort.Strings(names)

				fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d transactions", len(txns))))
				for _, name := range names {
					fmt.Printf("  %-24s %4d  %s\n", name, counts[name], cli.FormatAmount(totals[name]))
				}
				return nil
			})
		},
	}
}
