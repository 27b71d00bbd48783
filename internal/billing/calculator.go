package billing

import (
	"time"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/shopspring/decimal"
)

// QuickTurnoverItem is billed against the short grace threshold.
const QuickTurnoverItem = "સિકંજા"

// Grace thresholds in inclusive days.
const (
	QuickTurnoverThreshold = 5
	DefaultThreshold       = 10
)

// Result is the outcome of computing one row.
type Result struct {
	Days        decimal.Decimal
	Charge      model.Charge
	Diagnostics model.Diagnostics
}

// GraceThreshold returns the elapsed-day cutoff for a partial return of item.
func GraceThreshold(item string) int {
	if normalizeItem(item) == QuickTurnoverItem {
		return QuickTurnoverThreshold
	}
	return DefaultThreshold
}

// InclusiveDays counts calendar days from out to in, both ends included.
// It reports false when either date is missing.
func InclusiveDays(out, in *time.Time) (int, bool) {
	if out == nil || in == nil || out.IsZero() || in.IsZero() {
		return 0, false
	}
	elapsed := model.DateOnly(*in).Sub(model.DateOnly(*out))
	return int(elapsed/(24*time.Hour)) + 1, true
}

// Compute derives the chargeable days and total for row under rule.
// A nil rule means no rule governs the item.
func Compute(row model.TransactionRow, rule *model.Rule) Result {
	var res Result
	res.Days, res.Diagnostics = chargeableDays(row, rule)

	if normalizeItem(row.Item) == "" {
		res.Charge = model.NotApplicable()
		res.Diagnostics |= model.DiagBlankItem
		return res
	}

	qty, diag := billedQuantity(row)
	res.Diagnostics |= diag
	res.Charge = model.Amount(qty.Mul(row.RatePerUnit).Mul(res.Days))
	return res
}

func chargeableDays(row model.TransactionRow, rule *model.Rule) (decimal.Decimal, model.Diagnostics) {
	if rule == nil {
		if row.SuppliedDays != nil {
			return *row.SuppliedDays, model.DiagRuleMissing
		}
		return decimal.Zero, model.DiagRuleMissing
	}

	diag := rule.Malformed
	var days decimal.Decimal
	if rule.Method == model.Fixed {
		days = rule.FixedRate
	} else {
		days = row.Size.Mul(rule.SizeFactor)
	}

	if rule.MinimumDays > 0 {
		minimum := decimal.NewFromInt(int64(rule.MinimumDays))
		if days.LessThan(minimum) {
			days = minimum
			diag |= model.DiagMinimumApplied
		}
	}

	return days, diag
}

// billedQuantity picks the quantity to bill. Tier order matters: nothing
// returned, fully returned, then partial returns split by the grace threshold.
func billedQuantity(row model.TransactionRow) (decimal.Decimal, model.Diagnostics) {
	out, in := row.QuantityOut, row.QuantityIn

	switch {
	case in.IsZero() && out.IsPositive():
		return out, 0
	case out.Equal(in):
		return out, 0
	case out.GreaterThan(in):
		elapsed, known := InclusiveDays(row.DateOut, row.DateIn)
		if !known {
			return in, model.DiagUnknownDuration
		}
		if elapsed < GraceThreshold(row.Item) {
			return in, 0
		}
		return out, 0
	default:
		// More came back than went out; billed on what went out.
		return out, model.DiagOverReturn
	}
}
