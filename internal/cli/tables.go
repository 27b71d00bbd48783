package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// ledgerColumns are the report columns shown in the terminal.
var ledgerColumns = []string{
	report.ColSerial, report.ColItem, report.ColSize, report.ColQuantityOut, report.ColDateOut,
	report.ColDateIn, report.ColQuantityIn, report.ColRate, report.ColDays, report.ColTotal,
	report.ColBalanceSince,
}

// newTable returns a borderless table. Cells are plain text; style picks the
// style of a data cell and is applied after widths are measured.
func newTable(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) *table.Table {
	return table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return style(row, col)
		})
}

// RenderLedger writes an expanded ledger as an aligned table.
func RenderLedger(out io.Writer, lines []model.LedgerLine, showDiagnostics bool) error {
	headers := append([]string{}, ledgerColumns...)
	if showDiagnostics {
		headers = append(headers, "diagnostics")
	}

	index := make(map[string]int, len(report.Columns))
	for i, c := range report.Columns {
		index[c] = i
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells := report.Row(line, nil)
		fields := make([]string, 0, len(headers))
		for _, c := range ledgerColumns {
			fields = append(fields, report.Text(cells[index[c]]))
		}
		if showDiagnostics {
			diag := ""
			if line.Kind() == model.LineTransaction {
				diag = line.Row.Diagnostics.String()
			}
			fields = append(fields, diag)
		}
		rows = append(rows, fields)
	}

	diagCol := len(ledgerColumns)
	t := newTable(headers, rows, func(row, col int) lipgloss.Style {
		switch {
		case col == 0 && row >= 0 && row < len(lines) && lines[row].Kind() == model.LineOutstanding:
			return OutstandingStyle.PaddingRight(2)
		case showDiagnostics && col == diagCol:
			return SubtleStyle
		default:
			return cellStyle
		}
	})

	if _, err := fmt.Fprintln(out, t.String()); err != nil {
		return fmt.Errorf("failed to write ledger table: %w", err)
	}
	return nil
}

// RenderRules writes the control panel as an aligned table.
func RenderRules(out io.Writer, rules []model.Rule) error {
	const problemCol = 6

	rows := make([][]string, 0, len(rules))
	for i, r := range rules {
		problems := ""
		if r.Malformed != 0 {
			problems = r.Malformed.String()
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), r.ItemName, r.Method.String(), r.FixedRate.String(),
			r.SizeFactor.String(), strconv.Itoa(r.MinimumDays), problems,
		})
	}

	t := newTable([]string{"#", "Item", "Method", "Fixed", "Factor", "Min days", "Problems"}, rows,
		func(_, col int) lipgloss.Style {
			if col == problemCol {
				return WarningStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(out, t.String()); err != nil {
		return fmt.Errorf("failed to write rules table: %w", err)
	}
	return nil
}

// RenderSummary formats dashboard totals in a box.
func RenderSummary(s billing.Summary) string {
	content := fmt.Sprintf("  • Customers: %d\n", s.Customers) +
		fmt.Sprintf("  • Ledger rows: %d\n", s.Rows) +
		fmt.Sprintf("  • Total rent: ₹%s\n", s.TotalRent.StringFixed(2)) +
		fmt.Sprintf("  • Outstanding units: %s", s.Outstanding.String())
	return RenderBox(ChartIcon+" Dashboard", content)
}

// Plural returns "1 row" or "n rows".
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
