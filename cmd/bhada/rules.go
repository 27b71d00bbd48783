package main

import (
	"fmt"

	"github.com/Veraticus/bhada/internal/cli"
	"github.com/Veraticus/bhada/internal/common"
	"github.com/Veraticus/bhada/internal/workbook"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the control panel of pricing rules",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesImportCmd())
	cmd.AddCommand(rulesExportCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the stored pricing rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, _, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			rules, err := store.GetRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No rules found. Use 'bhada rules import' to load the control panel."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle("Control Panel"))
			return cli.RenderRules(out, rules)
		},
	}
}

func rulesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [control.xlsx]",
		Short: "Replace the stored rules with a control panel workbook",
		Long: `Replace the stored rules with a control panel workbook.

Without an argument the configured control workbook is used. When it does
not exist, the control panel sheet inside the ledger workbook is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			yes, _ := cmd.Flags().GetBool("yes")

			store, settings, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			controlPath := settings.ControlWorkbook
			if len(args) == 1 {
				controlPath = args[0]
			}

			raws, err := workbook.LoadRules(controlPath, settings.LedgerWorkbook)
			if err != nil {
				return common.NewUserError("could not read the control panel", err)
			}

			existing, err := store.GetRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}
			if len(existing) > 0 && !yes {
				ok, confirmErr := cli.Confirm(ctx, cmd.InOrStdin(), out,
					fmt.Sprintf("Replace %s with %s?", cli.Plural(len(existing), "rule"), cli.Plural(len(raws), "rule")))
				if confirmErr != nil {
					return confirmErr
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Rules left unchanged."))
					return nil
				}
			}

			if err := store.ReplaceRules(ctx, raws); err != nil {
				return fmt.Errorf("failed to save rules: %w", err)
			}

			common.LogInfo("imported control panel", common.Fields{"path": controlPath, "rules": len(raws)})
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %s", cli.Plural(len(raws), "rule"))))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "replace existing rules without asking")

	return cmd
}

func rulesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <control.xlsx>",
		Short: "Write the stored rules to a control panel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			raws, err := store.GetRawRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if err := workbook.SaveControlPanel(args[0], raws); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %s to %s", cli.Plural(len(raws), "rule"), args[0])))
			return nil
		},
	}
}
