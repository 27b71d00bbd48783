package main

import (
	"fmt"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/cli"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show customer count, total rent and outstanding units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, settings, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			customers, err := store.GetCustomers(ctx)
			if err != nil {
				return fmt.Errorf("failed to get customers: %w", err)
			}
			if len(customers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No ledgers yet. Use 'bhada ledger import' to load the ledger workbook."))
				return nil
			}

			result, err := recomputeAll(cmd, store, settings)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(billing.Summarize(result)))
			return nil
		},
	}
}
