package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes", input: "YES\n", want: true},
		{name: "gujarati yes", input: "હા\n", want: true},
		{name: "no", input: "n\n"},
		{name: "empty", input: "\n"},
		{name: "eof", input: ""},
		{name: "no newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(context.Background(), strings.NewReader(tt.input), &out, "Replace rules?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Replace rules? [y/N]")
		})
	}
}

func TestConfirm_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Confirm(ctx, pr, io.Discard, "Continue?")
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestInterruptHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewInterruptHandler(&out, "Nothing was saved.")

	ctx := h.HandleInterrupts(context.Background())
	assert.False(t, h.WasInterrupted())

	h.interrupt()
	h.interrupt()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}
	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Interrupted!"))
	assert.Contains(t, out.String(), "Nothing was saved.")

	assert.NotNil(t, NewInterruptHandler(nil, "").writer)
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, 3, "Recomputing")

	done := make(chan struct{})
	for _, c := range []string{"a", "b", "c"} {
		go func() {
			p.Done(c)
			done <- struct{}{}
		}()
	}
	for range 3 {
		<-done
	}

	assert.Equal(t, 3, p.Completed())
}

func TestRenderLedger(t *testing.T) {
	out := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	in := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	rows := []model.TransactionRow{{
		Serial:      "1",
		Item:        "પ્લેટ",
		QuantityOut: decimal.NewFromInt(10),
		QuantityIn:  decimal.NewFromInt(4),
		RatePerUnit: decimal.NewFromInt(2),
		DateOut:     &out,
		DateIn:      &in,
	}}
	lines := billing.Expand(billing.Recompute(nil, rows))

	var buf bytes.Buffer
	require.NoError(t, RenderLedger(&buf, lines, true))

	text := buf.String()
	assert.Contains(t, text, "પ્લેટ")
	assert.Contains(t, text, "01/03/2024")
	assert.Contains(t, text, "21/03/2024", "balance since the day after return")
	assert.Contains(t, text, "rule_missing")
	assert.Equal(t, 3, strings.Count(text, "\n"))
}

func TestRenderLedger_AlignedWithColor(t *testing.T) {
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(previous) })

	out := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows := []model.TransactionRow{
		{Serial: "1", Item: "પ્લેટ", QuantityOut: decimal.NewFromInt(10), QuantityIn: decimal.NewFromInt(4), DateOut: &out},
		{Serial: "12", Item: "ચેનલ", QuantityOut: decimal.NewFromInt(3), QuantityIn: decimal.NewFromInt(3)},
	}
	lines := billing.Expand(billing.Recompute(nil, rows))
	require.Len(t, lines, 3)

	var buf bytes.Buffer
	require.NoError(t, RenderLedger(&buf, lines, true))

	text := strings.TrimSuffix(buf.String(), "\n")
	assert.Contains(t, text, "\x1b[", "styles are applied")

	rendered := strings.Split(text, "\n")
	require.Len(t, rendered, 4)
	width := lipgloss.Width(rendered[0])
	for i, line := range rendered {
		assert.Equal(t, width, lipgloss.Width(line), "line %d is misaligned: %q", i, line)
	}
}

func TestRenderRules(t *testing.T) {
	rules := model.ParseRules([]model.RawRule{
		{ItemName: "ચેનલ", FixedRate: "10", Method: "નક્કી"},
		{ItemName: "પ્લેટ", SizeFactor: "abc"},
	})

	var buf bytes.Buffer
	require.NoError(t, RenderRules(&buf, rules))
	assert.Contains(t, buf.String(), "ચેનલ")
	assert.Contains(t, buf.String(), "fixed")
	assert.Contains(t, buf.String(), "malformed_factor")
}

func TestRenderSummary(t *testing.T) {
	s := RenderSummary(billing.Summary{
		TotalRent:   decimal.RequireFromString("1234.5"),
		Outstanding: decimal.NewFromInt(12),
		Customers:   3,
		Rows:        40,
	})
	assert.Contains(t, s, "₹1234.50")
	assert.Contains(t, s, "Customers: 3")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 row", Plural(1, "row"))
	assert.Equal(t, "0 rows", Plural(0, "row"))
}
