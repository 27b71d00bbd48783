// Package report lays expanded ledgers out as rows of cells for every sink:
// workbooks, Google Sheets and the terminal.
package report

import (
	"slices"
	"time"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/shopspring/decimal"
)

// Ledger column headers, in the order ledgers are written.
const (
	ColSerial        = "ક્રમ"
	ColPerDay        = "એક દિવસ"
	ColItem          = "આઈટમ"
	ColSize          = "સાઈઝ"
	ColQuantityOut   = "જાવક નંગ"
	ColDateOut       = "જાવક તા."
	ColDateIn        = "જમા તા."
	ColQuantityIn    = "જમા નંગ"
	ColRate          = "નંગ દીઠ ભાડું"
	ColDays          = "દિવસ"
	ColTotal         = "કુલ રકમ"
	ColPaymentDate   = "જમા તા(જમા રકમ માટે)"
	ColPaymentAmount = "જમા રકમ"
	ColBalanceSince  = "તા Xથી બાકી"
)

// Columns is the canonical ledger header.
var Columns = []string{
	ColSerial, ColPerDay, ColItem, ColSize, ColQuantityOut, ColDateOut, ColDateIn,
	ColQuantityIn, ColRate, ColDays, ColTotal, ColPaymentDate, ColPaymentAmount, ColBalanceSince,
}

// DateLayout is how dates are shown as text.
const DateLayout = "02/01/2006"

// IsCanonical reports whether header is one of Columns.
func IsCanonical(header string) bool {
	return slices.Contains(Columns, header)
}

// ExtraColumns returns the passthrough headers used by rows that are not
// canonical columns, sorted.
func ExtraColumns(rows []model.TransactionRow) []string {
	var extra []string
	for _, row := range rows {
		for k := range row.Extra {
			if !IsCanonical(k) && !slices.Contains(extra, k) {
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	return extra
}

// Header returns the canonical columns followed by extra.
func Header(extra []string) []string {
	return append(slices.Clone(Columns), extra...)
}

// Row lays one ledger line out under Header(extra). Cells are strings,
// decimal.Decimal or time.Time; blanks are empty strings. Passthrough values
// that read as numbers or dates are written typed.
func Row(line model.LedgerLine, extra []string) []any {
	cells := make([]any, 0, len(Columns)+len(extra))
	if line.Kind() == model.LineOutstanding {
		o := line.Outstanding
		cells = append(cells,
			model.OutstandingSerial, o.PerDay, o.Item, o.Size, o.RemainingQuantity,
			dateCell(o.DateOut), "", decimal.Zero, o.RatePerUnit, o.Days, "",
			"", "", dateCell(o.BalanceSince),
		)
		for range extra {
			cells = append(cells, "")
		}
		return cells
	}

	r := line.Row
	var total any = model.NotApplicableMark
	if amount, ok := r.Charge.Value(); ok {
		total = amount
	}
	cells = append(cells,
		r.Serial, r.PerDay, r.Item, r.Size, r.QuantityOut,
		dateCell(r.DateOut), dateCell(r.DateIn), r.QuantityIn, r.RatePerUnit, r.Days, total,
		extraCell(r.Extra, ColPaymentDate), extraCell(r.Extra, ColPaymentAmount), extraCell(r.Extra, ColBalanceSince),
	)
	for _, k := range extra {
		cells = append(cells, extraCell(r.Extra, k))
	}
	return cells
}

// extraCell restores the type of a passthrough value: dates in the date
// columns and numbers anywhere come back as time.Time and decimal.Decimal.
func extraCell(extra map[string]string, col string) any {
	v := extra[col]
	if v == "" {
		return ""
	}
	if col == ColPaymentDate || col == ColBalanceSince {
		if t, err := time.Parse(DateLayout, v); err == nil {
			return t
		}
	}
	if d, err := decimal.NewFromString(v); err == nil {
		return d
	}
	return v
}

// Rows lays out every line.
func Rows(lines []model.LedgerLine, extra []string) [][]any {
	out := make([][]any, 0, len(lines))
	for _, line := range lines {
		out = append(out, Row(line, extra))
	}
	return out
}

// Text renders a cell for display.
func Text(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case decimal.Decimal:
		return c.String()
	case time.Time:
		return c.Format(DateLayout)
	default:
		return ""
	}
}

// Numeric converts decimal cells to float64 for sinks that store numbers
// natively. Other cells are returned unchanged.
func Numeric(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return v
}

func dateCell(t *time.Time) any {
	if t == nil || t.IsZero() {
		return ""
	}
	return *t
}
