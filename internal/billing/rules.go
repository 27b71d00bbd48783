package billing

import (
	"strings"

	"github.com/Veraticus/bhada/internal/model"
)

// RuleTable is an ordered collection of pricing rules keyed by item name.
// Item names need not be unique; lookups return the first match.
type RuleTable struct {
	rules []model.Rule
	names []string // normalized item names, parallel to rules
}

// NewRuleTable builds a table over rules, keeping their order.
func NewRuleTable(rules []model.Rule) *RuleTable {
	t := &RuleTable{
		rules: make([]model.Rule, len(rules)),
		names: make([]string, len(rules)),
	}
	copy(t.rules, rules)
	for i, r := range rules {
		t.names[i] = normalizeItem(r.ItemName)
	}
	return t
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the rules in table order.
func (t *RuleTable) Rules() []model.Rule {
	out := make([]model.Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Resolve finds the rule for an item. The whole table is searched for an
// exact match before any rule whose name contains the query is considered.
// A blank item resolves to nothing without scanning.
func (t *RuleTable) Resolve(item string) (model.Rule, bool) {
	query := normalizeItem(item)
	if query == "" {
		return model.Rule{}, false
	}

	for i, name := range t.names {
		if name == query {
			return t.rules[i], true
		}
	}

	for i, name := range t.names {
		if strings.Contains(name, query) {
			return t.rules[i], true
		}
	}

	return model.Rule{}, false
}

func normalizeItem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
