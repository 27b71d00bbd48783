// Package model defines the core data structures for the bhada application.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PricingMethod selects how a rule derives the chargeable duration.
type PricingMethod int

// Pricing methods.
const (
	// SizeBased multiplies the row size by the rule's size factor.
	SizeBased PricingMethod = iota
	// Fixed uses the rule's fixed rate as the duration.
	Fixed
)

// FixedMarker is the text that marks a method field as fixed pricing.
const FixedMarker = "નક્કી"

func (m PricingMethod) String() string {
	if m == Fixed {
		return "fixed"
	}
	return "size"
}

// ParsePricingMethod derives the pricing method from a free-text method field.
// Anything that does not carry the fixed marker is size based.
func ParsePricingMethod(text string) PricingMethod {
	if strings.Contains(strings.TrimSpace(text), FixedMarker) {
		return Fixed
	}
	return SizeBased
}

// RawRule is one control panel row as entered by the operator.
// The ingestion side has already chosen which cell feeds each field.
type RawRule struct {
	ItemName    string `json:"item_name"`
	Size        string `json:"size"`
	FixedRate   string `json:"fixed_rate"`
	SizeFactor  string `json:"size_factor"`
	MinimumDays string `json:"minimum_days"`
	Method      string `json:"method"`
	Notes       string `json:"notes"`
}

// Rule is a pricing rule for one physical item type.
type Rule struct {
	Raw         RawRule         `json:"raw"`
	ItemName    string          `json:"item_name"`
	FixedRate   decimal.Decimal `json:"fixed_rate"`
	SizeFactor  decimal.Decimal `json:"size_factor"`
	Method      PricingMethod   `json:"method"`
	MinimumDays int             `json:"minimum_days"`
	Malformed   Diagnostics     `json:"malformed,omitempty"`
}

// ParseRule converts a raw control panel row into a Rule.
// Unparsable numbers degrade to zero and are recorded in Malformed.
func ParseRule(raw RawRule) Rule {
	rule := Rule{
		Raw:      raw,
		ItemName: strings.TrimSpace(raw.ItemName),
		Method:   ParsePricingMethod(raw.Method),
	}

	var ok bool
	if rule.FixedRate, ok = parseDecimal(raw.FixedRate); !ok {
		rule.Malformed |= DiagMalformedRate
	}
	if rule.SizeFactor, ok = parseDecimal(raw.SizeFactor); !ok {
		rule.Malformed |= DiagMalformedFactor
	}

	minimum, ok := parseDecimal(raw.MinimumDays)
	if !ok {
		rule.Malformed |= DiagMalformedMinimum
	}
	rule.MinimumDays = int(minimum.IntPart())

	return rule
}

// ParseRules parses every raw row, preserving order.
func ParseRules(raws []RawRule) []Rule {
	rules := make([]Rule, 0, len(raws))
	for _, raw := range raws {
		rules = append(rules, ParseRule(raw))
	}
	return rules
}

// parseDecimal reads a numeric cell. Blank cells are zero and not malformed.
func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity reads a numeric cell, coercing anything unparsable to zero.
func ParseQuantity(s string) decimal.Decimal {
	d, _ := parseDecimal(s)
	return d
}
