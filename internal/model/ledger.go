package model

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// OutstandingSerial is the serial written on synthetic outstanding rows.
const OutstandingSerial = "બાકી"

// TransactionRow is one line of customer activity in a ledger.
type TransactionRow struct {
	DateOut      *time.Time
	DateIn       *time.Time
	SuppliedDays *decimal.Decimal  // days already entered on the row, if any
	Extra        map[string]string // passthrough columns, keyed by header
	ID           string
	Serial       string
	PerDay       string
	Item         string
	Size         decimal.Decimal
	QuantityOut  decimal.Decimal
	QuantityIn   decimal.Decimal
	RatePerUnit  decimal.Decimal
	Days         decimal.Decimal
	Charge       Charge
	Diagnostics  Diagnostics
}

// Clone returns a copy that shares no mutable state with r.
func (r TransactionRow) Clone() TransactionRow {
	out := r
	out.DateOut = cloneTime(r.DateOut)
	out.DateIn = cloneTime(r.DateIn)
	if r.SuppliedDays != nil {
		d := *r.SuppliedDays
		out.SuppliedDays = &d
	}
	out.Extra = maps.Clone(r.Extra)
	return out
}

// Outstanding reports whether fewer units came back than went out.
func (r TransactionRow) Outstanding() bool {
	return r.QuantityOut.GreaterThan(r.QuantityIn)
}

// WithSettledDays returns a copy whose supplied days are the computed days,
// the way an edited ledger is stored back.
func (r TransactionRow) WithSettledDays() TransactionRow {
	out := r.Clone()
	d := r.Days
	out.SuppliedDays = &d
	return out
}

// OutstandingRow is the synthetic line for units not yet returned.
type OutstandingRow struct {
	DateOut           *time.Time
	BalanceSince      *time.Time
	Item              string
	PerDay            string
	Size              decimal.Decimal
	RemainingQuantity decimal.Decimal
	RatePerUnit       decimal.Decimal
	Days              decimal.Decimal
}

// LineKind discriminates expanded ledger lines.
type LineKind int

// Ledger line kinds.
const (
	LineTransaction LineKind = iota
	LineOutstanding
)

// LedgerLine is one line of an expanded ledger. Exactly one field is set.
type LedgerLine struct {
	Row         *TransactionRow
	Outstanding *OutstandingRow
}

// Kind reports which variant the line holds.
func (l LedgerLine) Kind() LineKind {
	if l.Outstanding != nil {
		return LineOutstanding
	}
	return LineTransaction
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
