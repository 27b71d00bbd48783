package billing

import (
	"testing"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rulesNamed(names ...string) []model.Rule {
	rules := make([]model.Rule, 0, len(names))
	for i, n := range names {
		rules = append(rules, model.Rule{ItemName: n, MinimumDays: i})
	}
	return rules
}

func TestRuleTable_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		rules    []string
		wantMin  int
		wantFind bool
	}{
		{
			name:     "exact match",
			rules:    []string{"Plate", "Pipe"},
			query:    "pipe",
			wantFind: true,
			wantMin:  1,
		},
		{
			name:     "whitespace and case are ignored",
			rules:    []string{"Plate", "Pipe"},
			query:    "  PIPE ",
			wantFind: true,
			wantMin:  1,
		},
		{
			name:     "exact match anywhere beats earlier partial match",
			rules:    []string{"Long Pipe", "Pipe"},
			query:    "pipe",
			wantFind: true,
			wantMin:  1,
		},
		{
			name:     "partial match when no exact match exists",
			rules:    []string{"Plate", "Long Pipe", "Pipe Clamp"},
			query:    "pipe",
			wantFind: true,
			wantMin:  1,
		},
		{
			name:     "query must be contained in rule name, not the reverse",
			rules:    []string{"Pipe"},
			query:    "Long Pipe",
			wantFind: false,
		},
		{
			name:     "duplicates resolve to first",
			rules:    []string{"Pipe", "pipe"},
			query:    "Pipe",
			wantFind: true,
			wantMin:  0,
		},
		{
			name:     "blank item resolves to nothing",
			rules:    []string{""},
			query:    "   ",
			wantFind: false,
		},
		{
			name:     "miss",
			rules:    []string{"Plate"},
			query:    "Jack",
			wantFind: false,
		},
		{
			name:     "gujarati names",
			rules:    []string{"પ્લેટ", "સિકંજા"},
			query:    " સિકંજા",
			wantFind: true,
			wantMin:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewRuleTable(rulesNamed(tt.rules...))
			rule, ok := table.Resolve(tt.query)
			require.Equal(t, tt.wantFind, ok)
			if tt.wantFind {
				assert.Equal(t, tt.wantMin, rule.MinimumDays, "resolved to wrong rule %q", rule.ItemName)
			}
		})
	}
}

func TestRuleTable_ResolveIsNormalized(t *testing.T) {
	table := NewRuleTable(rulesNamed("Plate", "Item", "Jack"))

	a, okA := table.Resolve(" Item ")
	b, okB := table.Resolve("item")

	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}

func TestRuleTable_DoesNotAliasInput(t *testing.T) {
	rules := rulesNamed("Plate")
	table := NewRuleTable(rules)
	rules[0].ItemName = "Changed"

	_, ok := table.Resolve("plate")
	assert.True(t, ok)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "Plate", table.Rules()[0].ItemName)
}
