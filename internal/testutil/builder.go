package testutil

import (
	"time"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/shopspring/decimal"
)

// BaseDate is the first day used by Day offsets.
var BaseDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

// Day returns BaseDate plus offset days.
func Day(offset int) *time.Time {
	t := BaseDate.AddDate(0, 0, offset)
	return &t
}

// RowBuilder builds ledger rows fluently.
type RowBuilder struct {
	row model.TransactionRow
}

// NewRow starts a row for item with rate 1 and no quantities.
func NewRow(item string) *RowBuilder {
	return &RowBuilder{row: model.TransactionRow{
		Item:        item,
		RatePerUnit: decimal.NewFromInt(1),
	}}
}

// Serial sets the serial column.
func (b *RowBuilder) Serial(s string) *RowBuilder {
	b.row.Serial = s
	return b
}

// Size sets the row size.
func (b *RowBuilder) Size(n float64) *RowBuilder {
	b.row.Size = decimal.NewFromFloat(n)
	return b
}

// Out sets the quantity sent out.
func (b *RowBuilder) Out(n int64) *RowBuilder {
	b.row.QuantityOut = decimal.NewFromInt(n)
	return b
}

// In sets the quantity returned.
func (b *RowBuilder) In(n int64) *RowBuilder {
	b.row.QuantityIn = decimal.NewFromInt(n)
	return b
}

// Rate sets the per-unit rate.
func (b *RowBuilder) Rate(s string) *RowBuilder {
	b.row.RatePerUnit = decimal.RequireFromString(s)
	return b
}

// Dates sets the out and in dates as Day offsets. A negative in offset
// leaves the return date blank.
func (b *RowBuilder) Dates(out, in int) *RowBuilder {
	b.row.DateOut = Day(out)
	b.row.DateIn = nil
	if in >= 0 {
		b.row.DateIn = Day(in)
	}
	return b
}

// Extra sets a passthrough column.
func (b *RowBuilder) Extra(col, value string) *RowBuilder {
	if b.row.Extra == nil {
		b.row.Extra = make(map[string]string)
	}
	b.row.Extra[col] = value
	return b
}

// Build returns the row.
func (b *RowBuilder) Build() model.TransactionRow {
	return b.row.Clone()
}

// FixedRule returns a control panel row billing a fixed number of days.
func FixedRule(item string, days, minimum string) model.RawRule {
	return model.RawRule{ItemName: item, FixedRate: days, MinimumDays: minimum, Method: model.FixedMarker}
}

// SizeRule returns a control panel row billing size times factor days.
func SizeRule(item string, factor, minimum string) model.RawRule {
	return model.RawRule{ItemName: item, SizeFactor: factor, MinimumDays: minimum}
}
