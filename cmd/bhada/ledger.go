package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/cli"
	"github.com/Veraticus/bhada/internal/common"
	"github.com/Veraticus/bhada/internal/config"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/sheets"
	"github.com/Veraticus/bhada/internal/storage"
	"github.com/Veraticus/bhada/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Import, recompute and export customer ledgers",
	}

	cmd.AddCommand(ledgerImportCmd())
	cmd.AddCommand(ledgerShowCmd())
	cmd.AddCommand(ledgerRecomputeCmd())
	cmd.AddCommand(ledgerExportCmd())
	cmd.AddCommand(ledgerSheetsCmd())
	cmd.AddCommand(ledgerDeleteCmd())

	return cmd
}

func ledgerImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [ledger.xlsx]",
		Short: "Load every customer sheet of a ledger workbook",
		Long: `Load every customer sheet of a ledger workbook into the database.

Each customer's stored ledger is replaced by its sheet. Outstanding lines
written by an earlier save are skipped; they are regenerated on every pass.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			withRules, _ := cmd.Flags().GetBool("rules")

			store, settings, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			path := settings.LedgerWorkbook
			if len(args) == 1 {
				path = args[0]
			}

			ledgers, err := workbook.LoadLedgers(path)
			if err != nil {
				return common.NewUserError("could not read the ledger workbook", err)
			}

			rows := 0
			for _, l := range ledgers {
				if err := store.SaveLedger(ctx, l.Customer, l.Rows); err != nil {
					return fmt.Errorf("failed to save ledger for %q: %w", l.Customer, err)
				}
				rows += len(l.Rows)
				common.LogDebug("imported ledger", common.Fields{"customer": l.Customer, "rows": len(l.Rows)})
			}

			if withRules {
				raws, err := workbook.LoadRules(settings.ControlWorkbook, path)
				if err != nil {
					return common.NewUserError("could not read the control panel", err)
				}
				if err := store.ReplaceRules(ctx, raws); err != nil {
					return fmt.Errorf("failed to save rules: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %s", cli.Plural(len(raws), "rule"))))
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %s with %s",
				cli.Plural(len(ledgers), "customer"), cli.Plural(rows, "row"))))
			return nil
		},
	}

	cmd.Flags().Bool("rules", false, "also replace the rules from the control panel")

	return cmd
}

func ledgerShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <customer>",
		Short: "Show a customer's recomputed ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			showDiagnostics, _ := cmd.Flags().GetBool("diagnostics")

			store, _, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			lines, err := customerLines(ctx, store, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatTitle(args[0]))
			if err := cli.RenderLedger(out, lines, showDiagnostics); err != nil {
				return err
			}

			summary := billing.Summarize(map[string][]model.LedgerLine{args[0]: lines})
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Total rent ₹%s, outstanding units %s",
				summary.TotalRent.StringFixed(2), summary.Outstanding.String())))
			return nil
		},
	}

	cmd.Flags().BoolP("diagnostics", "d", false, "show why each row was billed the way it was")

	return cmd
}

// recomputeAll recomputes every stored ledger with a progress bar on stderr.
func recomputeAll(cmd *cobra.Command, store *storage.SQLiteStorage, settings config.Settings) (map[string][]model.LedgerLine, error) {
	ctx := cmd.Context()

	table, err := loadRuleTable(ctx, store)
	if err != nil {
		return nil, err
	}

	ledgers, err := store.GetAllLedgers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledgers: %w", err)
	}
	if len(ledgers) == 0 {
		return nil, common.NewUserError("no ledgers stored; run 'bhada ledger import' first", common.ErrNoLedgers)
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Nothing was saved.")
	ctx = interrupts.HandleInterrupts(ctx)
	defer interrupts.Stop()

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(ledgers), "Recomputing ledgers...")
	result, err := billing.RecomputeAll(ctx, table, ledgers, billing.PassOptions{
		Workers: settings.Workers,
		OnDone:  progress.Done,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && interrupts.WasInterrupted() {
			return nil, common.NewUserError("recompute interrupted", err)
		}
		return nil, err
	}
	return result, nil
}

func ledgerRecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute every customer's ledger",
		Long: `Recompute days and rent for every stored ledger and insert outstanding
lines.

With --save the expanded ledgers are written to a workbook; other sheets in
an existing workbook are kept. With --settle the computed days are stored
back on each row, the way an edited ledger sheet carries them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			savePath, _ := cmd.Flags().GetString("save")
			settle, _ := cmd.Flags().GetBool("settle")

			store, settings, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if cmd.Flags().Changed("workers") {
				settings.Workers, _ = cmd.Flags().GetInt("workers")
			}

			result, err := recomputeAll(cmd, store, settings)
			if err != nil {
				return err
			}
			customers := sortedCustomers(result)

			if savePath != "" {
				expanded := make([]workbook.ExpandedLedger, 0, len(customers))
				for _, c := range customers {
					expanded = append(expanded, workbook.ExpandedLedger{Customer: c, Lines: result[c]})
				}
				if err := workbook.SaveLedgers(savePath, expanded); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess("Saved ledgers to "+savePath))
			}

			if settle {
				for _, c := range customers {
					if err := store.SaveLedger(ctx, c, settledRows(result[c])); err != nil {
						return fmt.Errorf("failed to settle ledger for %q: %w", c, err)
					}
				}
				fmt.Fprintln(out, cli.FormatSuccess("Stored computed days for "+cli.Plural(len(customers), "customer")))
			}

			fmt.Fprintln(out, cli.RenderSummary(billing.Summarize(result)))
			return nil
		},
	}

	cmd.Flags().String("save", "", "write the expanded ledgers to this workbook")
	cmd.Flags().Bool("settle", false, "store computed days back on each row")
	cmd.Flags().Int("workers", billing.DefaultWorkers, "ledgers to recompute in parallel")

	return cmd
}

// settledRows drops outstanding lines and pins each row's computed days.
func settledRows(lines []model.LedgerLine) []model.TransactionRow {
	rows := make([]model.TransactionRow, 0, len(lines))
	for _, line := range lines {
		if line.Kind() == model.LineTransaction {
			rows = append(rows, line.Row.WithSettledDays())
		}
	}
	return rows
}

func ledgerExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <customer>",
		Short: "Write one customer's ledger and the control panel to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			customer := args[0]
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = customer + "_updated.xlsx"
			}

			store, _, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			lines, err := customerLines(ctx, store, customer)
			if err != nil {
				return err
			}
			raws, err := store.GetRawRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			f, err := os.Create(output) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := workbook.ExportCustomer(f, customer, lines, raws); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s to %s", customer, output)))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "output workbook (default: <customer>_updated.xlsx)")

	return cmd
}

func ledgerSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets [customer]",
		Short: "Publish ledgers to Google Sheets",
		Long: `Publish recomputed ledgers to a Google spreadsheet, one tab per customer.

Authenticate first with 'bhada auth sheets' or configure a service account.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			all, _ := cmd.Flags().GetBool("all")
			if len(args) == 0 && !all {
				return common.NewUserError("name a customer or pass --all", common.ErrInvalidConfig)
			}

			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return common.NewUserError("Google Sheets is not configured", err)
			}

			store, settings, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
			if err != nil {
				return err
			}

			ledgers := make(map[string][]model.LedgerLine)
			if all {
				if ledgers, err = recomputeAll(cmd, store, settings); err != nil {
					return err
				}
			} else {
				lines, err := customerLines(ctx, store, args[0])
				if err != nil {
					return err
				}
				ledgers[args[0]] = lines
			}

			for _, c := range sortedCustomers(ledgers) {
				if err := writer.WriteLedger(ctx, c, ledgers[c]); err != nil {
					return fmt.Errorf("failed to publish %q: %w", c, err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Published "+cli.Plural(len(ledgers), "ledger")))
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "publish every customer")

	return cmd
}

func ledgerDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <customer>",
		Short: "Delete a customer and its ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			yes, _ := cmd.Flags().GetBool("yes")

			store, _, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if !yes {
				ok, err := cli.Confirm(ctx, cmd.InOrStdin(), out, fmt.Sprintf("Delete %q and its ledger?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Nothing deleted."))
					return nil
				}
			}

			if err := store.DeleteCustomer(ctx, args[0]); err != nil {
				if errors.Is(err, storage.ErrCustomerMissing) {
					return common.NewUserError(fmt.Sprintf("no ledger for customer %q", args[0]), err)
				}
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess("Deleted "+args[0]))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "delete without asking")

	return cmd
}
