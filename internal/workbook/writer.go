package workbook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/report"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

const defaultSheet = "Sheet1"

var dateFormat = "dd/mm/yyyy"

// ControlColumns is the header written for a control panel.
var ControlColumns = []string{
	HeaderItemName, HeaderSize, HeaderFixedRate, HeaderSizeFactor,
	HeaderMinimumDays, HeaderMethod, HeaderNotes,
}

// ExpandedLedger is a customer's ledger with outstanding lines inserted.
type ExpandedLedger struct {
	Customer string
	Lines    []model.LedgerLine
}

// SheetName truncates a customer name to a valid sheet name.
func SheetName(customer string) string {
	r := []rune(customer)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}

// SaveLedger writes one expanded ledger into the workbook at path. Other
// sheets are kept; the file is created if it does not exist.
func SaveLedger(path, customer string, lines []model.LedgerLine) error {
	return SaveLedgers(path, []ExpandedLedger{{Customer: customer, Lines: lines}})
}

// SaveLedgers writes every ledger into the workbook at path in one save.
func SaveLedgers(path string, ledgers []ExpandedLedger) error {
	f, created, err := openOrCreate(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w, err := newSheetWriter(f)
	if err != nil {
		return err
	}
	for _, l := range ledgers {
		if err := w.writeLedger(l.Customer, l.Lines); err != nil {
			return err
		}
	}
	if created {
		if err := dropDefaultSheet(f, ledgers); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	slog.Debug("saved ledger workbook", "path", path, "customers", len(ledgers))
	return nil
}

// ExportCustomer writes a download workbook holding one customer's ledger
// followed by the control panel.
func ExportCustomer(w io.Writer, customer string, lines []model.LedgerLine, rules []model.RawRule) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := newSheetWriter(f)
	if err != nil {
		return err
	}
	if err := sw.writeLedger(customer, lines); err != nil {
		return err
	}
	if err := sw.writeControlPanel(rules); err != nil {
		return err
	}
	if err := dropDefaultSheet(f, []ExpandedLedger{{Customer: customer}}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveControlPanel writes rules to a fresh control workbook at path.
func SaveControlPanel(path string, rules []model.RawRule) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := newSheetWriter(f)
	if err != nil {
		return err
	}
	if err := sw.writeControlPanel(rules); err != nil {
		return err
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save control panel %s: %w", path, err)
	}
	return nil
}

func openOrCreate(path string) (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("failed to open workbook %s: %w", path, err)
}

// dropDefaultSheet removes the sheet a new file starts with, unless a
// customer was written under that name.
func dropDefaultSheet(f *excelize.File, ledgers []ExpandedLedger) error {
	for _, l := range ledgers {
		if SheetName(l.Customer) == defaultSheet {
			return nil
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f         *excelize.File
	dateStyle int
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}
	return &sheetWriter{f: f, dateStyle: style}, nil
}

func (w *sheetWriter) writeLedger(customer string, lines []model.LedgerLine) error {
	var rows []model.TransactionRow
	for _, line := range lines {
		if line.Kind() == model.LineTransaction {
			rows = append(rows, *line.Row)
		}
	}
	extra := report.ExtraColumns(rows)

	return w.writeSheet(SheetName(customer), report.Header(extra), report.Rows(lines, extra))
}

func (w *sheetWriter) writeControlPanel(rules []model.RawRule) error {
	rows := make([][]any, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []any{
			r.ItemName, numberOrText(r.Size), numberOrText(r.FixedRate), numberOrText(r.SizeFactor),
			numberOrText(r.MinimumDays), r.Method, r.Notes,
		})
	}
	return w.writeSheet(ControlSheetName, ControlColumns, rows)
}

// writeSheet replaces the contents of a sheet, creating it when missing.
func (w *sheetWriter) writeSheet(name string, header []string, rows [][]any) error {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %q: %w", name, err)
	}
	if idx == -1 {
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	} else if err := w.clearSheet(name); err != nil {
		return err
	}

	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := w.setRow(name, 1, head); err != nil {
		return err
	}

	for i, row := range rows {
		if err := w.setRow(name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) clearSheet(name string) error {
	existing, err := w.f.GetRows(name)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	for r := len(existing); r >= 1; r-- {
		if err := w.f.RemoveRow(name, r); err != nil {
			return fmt.Errorf("failed to clear sheet %q: %w", name, err)
		}
	}
	return nil
}

func (w *sheetWriter) setRow(name string, rowNum int, cells []any) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = report.Numeric(c)
	}

	start, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(name, start, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", rowNum, name, err)
	}

	for i, c := range cells {
		if _, ok := c.(time.Time); !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(name, cell, cell, w.dateStyle); err != nil {
			return fmt.Errorf("failed to style %s of %q: %w", cell, name, err)
		}
	}
	return nil
}

// numberOrText writes numeric control panel cells as numbers.
func numberOrText(s string) any {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
