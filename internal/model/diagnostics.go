package model

import "strings"

// Diagnostics records the silent degradations applied while computing a row.
// Flags never change computed values; they only make the degradation visible.
type Diagnostics uint16

// Diagnostic flags.
const (
	DiagRuleMissing Diagnostics = 1 << iota
	DiagMalformedRate
	DiagMalformedFactor
	DiagMalformedMinimum
	DiagUnknownDuration
	DiagBlankItem
	DiagOverReturn
	DiagMinimumApplied
)

var diagnosticNames = []struct {
	name string
	flag Diagnostics
}{
	{"rule_missing", DiagRuleMissing},
	{"malformed_rate", DiagMalformedRate},
	{"malformed_factor", DiagMalformedFactor},
	{"malformed_minimum", DiagMalformedMinimum},
	{"unknown_duration", DiagUnknownDuration},
	{"blank_item", DiagBlankItem},
	{"over_return", DiagOverReturn},
	{"minimum_applied", DiagMinimumApplied},
}

// Has reports whether every flag in f is set.
func (d Diagnostics) Has(f Diagnostics) bool {
	return d&f == f
}

// String renders the set flags joined by "|", or "none".
func (d Diagnostics) String() string {
	if d == 0 {
		return "none"
	}
	var parts []string
	for _, n := range diagnosticNames {
		if d.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
