package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/bhada/internal/common"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Control panel headers.
const (
	HeaderItemName    = "સામાનનું નામ"
	HeaderSize        = "સાઈઝ"
	HeaderRate        = "નંગ દીઠ ભાડું (₹)"
	HeaderFixedRate   = "નક્કી ભાડું (₹)"
	HeaderSizeFactor  = "સાઈઝ પ્રમાણે ગુણાંક"
	HeaderMinimumDays = "મિનિમમ દિવસ"
	HeaderMethod      = "ભાડું ગણવાની રીત"
	HeaderNotes       = "નોંધ"
)

// ControlSheetName is the sheet name used when a control panel is written.
const ControlSheetName = "Control Panel"

// controlMarkers identify a control panel header inside a ledger workbook.
var controlMarkers = []string{"સામાન", "ભાડું", "મિનિમમ"}

// ledgerHeaders are the columns that mark a sheet as a customer ledger.
var ledgerHeaders = []string{
	report.ColQuantityOut, report.ColQuantityIn, report.ColItem,
	report.ColDateOut, report.ColDateIn, report.ColRate,
}

// minLedgerHeaders is how many ledgerHeaders a customer sheet must carry.
const minLedgerHeaders = 3

var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// Ledger is one customer sheet.
type Ledger struct {
	Customer string
	Header   []string
	Rows     []model.TransactionRow
}

// sheet is a worksheet read as text, header first.
type sheet struct {
	index  map[string]int
	name   string
	header []string
	rows   [][]string
}

func (s *sheet) has(col string) bool {
	_, ok := s.index[col]
	return ok
}

func (s *sheet) cell(row []string, col string) string {
	i, ok := s.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// open reads every sheet of the workbook at path, in workbook order.
func open(path string) ([]*sheet, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var sheets []*sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, newSheet(name, rows))
	}
	return sheets, nil
}

func newSheet(name string, rows [][]string) *sheet {
	s := &sheet{name: name, index: make(map[string]int)}
	if len(rows) == 0 {
		return s
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		s.header = append(s.header, h)
		if _, dup := s.index[h]; h != "" && !dup {
			s.index[h] = i
		}
	}
	s.rows = rows[1:]
	return s
}

// IsLedgerSheet reports whether a header looks like a customer ledger.
func IsLedgerSheet(header []string) bool {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[strings.TrimSpace(h)] = true
	}
	n := 0
	for _, h := range ledgerHeaders {
		if seen[h] {
			n++
		}
	}
	return n >= minLedgerHeaders
}

// IsControlSheet reports whether a header looks like a control panel.
func IsControlSheet(header []string) bool {
	for _, h := range header {
		for _, marker := range controlMarkers {
			if strings.Contains(h, marker) {
				return true
			}
		}
	}
	return false
}

// LoadControlPanel reads the rules from the first sheet of a control workbook.
func LoadControlPanel(path string) ([]model.RawRule, error) {
	sheets, err := open(path)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", common.ErrWorkbookFormat, path)
	}
	return rulesFromSheet(sheets[0]), nil
}

// FindControlPanel looks for a control panel sheet inside a ledger workbook.
// Customer ledgers also carry a rent column, so they are skipped.
func FindControlPanel(path string) ([]model.RawRule, error) {
	sheets, err := open(path)
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		if IsControlSheet(s.header) && !IsLedgerSheet(s.header) {
			slog.Debug("found control panel in ledger workbook", "sheet", s.name)
			return rulesFromSheet(s), nil
		}
	}
	return nil, fmt.Errorf("%w: no control panel sheet in %s", common.ErrNotFound, path)
}

// LoadRules reads the control workbook when it exists, and otherwise falls
// back to a control sheet inside the ledger workbook.
func LoadRules(controlPath, ledgerPath string) ([]model.RawRule, error) {
	if controlPath != "" {
		if _, err := os.Stat(controlPath); err == nil {
			return LoadControlPanel(controlPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat control workbook: %w", err)
		}
	}
	if ledgerPath == "" {
		return nil, fmt.Errorf("%w: control workbook", common.ErrNotFound)
	}
	return FindControlPanel(ledgerPath)
}

func rulesFromSheet(s *sheet) []model.RawRule {
	rules := make([]model.RawRule, 0, len(s.rows))
	for _, row := range s.rows {
		name := s.cell(row, HeaderItemName)
		if name == "" {
			continue
		}
		rules = append(rules, model.RawRule{
			ItemName:    name,
			Size:        s.cell(row, HeaderSize),
			FixedRate:   firstNonZero(s.cell(row, HeaderRate), s.cell(row, HeaderFixedRate)),
			SizeFactor:  firstNonZero(s.cell(row, HeaderSizeFactor), s.cell(row, HeaderRate)),
			MinimumDays: s.cell(row, HeaderMinimumDays),
			Method:      s.cell(row, HeaderMethod),
			Notes:       s.cell(row, HeaderNotes),
		})
	}
	return rules
}

// firstNonZero returns the first cell that is neither blank nor zero, or the
// first zero when nothing else is set. Text is returned as is so that rule
// parsing can flag it.
func firstNonZero(cells ...string) string {
	fallback := ""
	for _, c := range cells {
		if c == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(c, ",", ""))
		if err != nil || !d.IsZero() {
			return c
		}
		if fallback == "" {
			fallback = c
		}
	}
	return fallback
}

// LoadLedgers reads every customer sheet of a ledger workbook. When no sheet
// looks like a ledger, every sheet is treated as one. Outstanding lines from a
// previous save are dropped; they are regenerated on every pass.
func LoadLedgers(path string) ([]Ledger, error) {
	sheets, err := open(path)
	if err != nil {
		return nil, err
	}

	var customers []*sheet
	for _, s := range sheets {
		if IsLedgerSheet(s.header) {
			customers = append(customers, s)
		}
	}
	if len(customers) == 0 {
		customers = sheets
	}
	if len(customers) == 0 {
		return nil, fmt.Errorf("%w in %s", common.ErrNoLedgers, path)
	}

	ledgers := make([]Ledger, 0, len(customers))
	for _, s := range customers {
		ledger := Ledger{Customer: s.name, Header: s.header}
		dropped := 0
		for i, row := range s.rows {
			if blankRow(row) {
				continue
			}
			if s.cell(row, report.ColSerial) == model.OutstandingSerial {
				dropped++
				continue
			}
			ledger.Rows = append(ledger.Rows, transactionFromRow(s, i+2, row))
		}
		slog.Debug("loaded ledger sheet",
			"customer", s.name,
			"rows", len(ledger.Rows),
			"outstanding_dropped", dropped)
		ledgers = append(ledgers, ledger)
	}
	return ledgers, nil
}

// transactionFromRow reads one sheet row; line is its 1-based row number.
func transactionFromRow(s *sheet, line int, row []string) model.TransactionRow {
	quantity := func(col string) decimal.Decimal {
		d := model.ParseQuantity(s.cell(row, col))
		if d.IsNegative() {
			slog.Warn("negative cell read as zero",
				"sheet", s.name,
				"row", line,
				"column", col,
				"value", d.String())
			return decimal.Zero
		}
		return d
	}

	r := model.TransactionRow{
		Serial:      s.cell(row, report.ColSerial),
		PerDay:      s.cell(row, report.ColPerDay),
		Item:        s.cell(row, report.ColItem),
		Size:        quantity(report.ColSize),
		QuantityOut: quantity(report.ColQuantityOut),
		QuantityIn:  quantity(report.ColQuantityIn),
		RatePerUnit: quantity(report.ColRate),
		DateOut:     ParseDate(s.cell(row, report.ColDateOut)),
		DateIn:      ParseDate(s.cell(row, report.ColDateIn)),
	}

	if days := s.cell(row, report.ColDays); days != "" {
		if d, err := decimal.NewFromString(strings.ReplaceAll(days, ",", "")); err == nil {
			r.SuppliedDays = &d
		}
	}

	for _, col := range s.header {
		if col == "" || !passthrough(col) {
			continue
		}
		v := s.cell(row, col)
		if v == "" {
			continue
		}
		if col == report.ColPaymentDate || col == report.ColBalanceSince {
			if t := ParseDate(v); t != nil {
				v = t.Format(report.DateLayout)
			}
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[col] = v
	}
	return r
}

// passthrough reports whether a column is carried on the row untouched.
func passthrough(col string) bool {
	switch col {
	case report.ColPaymentDate, report.ColPaymentAmount, report.ColBalanceSince:
		return true
	}
	return !report.IsCanonical(col)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseDate reads a day-first date or an Excel serial. Anything else is nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return nil
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		t = model.DateOnly(t)
		return &t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = model.DateOnly(t)
			return &t
		}
	}
	return nil
}
