package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/shopspring/decimal"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{name: "valid string", str: "test", paramName: "param"},
		{name: "empty string", str: "", paramName: "param", wantErr: true},
		{name: "whitespace only", str: "   ", paramName: "param", wantErr: true},
		{name: "string with spaces", str: "  test  ", paramName: "param"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateRules(t *testing.T) {
	if err := validateRules(nil); err != nil {
		t.Errorf("validateRules(nil) error = %v", err)
	}

	// Malformed numbers are accepted; they degrade when parsed.
	ok := []model.RawRule{{ItemName: "પ્લેટ", FixedRate: "abc"}}
	if err := validateRules(ok); err != nil {
		t.Errorf("validateRules() error = %v", err)
	}

	bad := []model.RawRule{{ItemName: "પ્લેટ"}, {ItemName: " "}}
	err := validateRules(bad)
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("validateRules() error = %v, want ErrInvalidRule", err)
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error should name the offending index, got %v", err)
	}
}

func TestValidateRows(t *testing.T) {
	neg := decimal.NewFromInt(-1)

	tests := []struct {
		name    string
		row     model.TransactionRow
		wantErr bool
	}{
		{name: "zero row", row: model.TransactionRow{}},
		{name: "negative out", row: model.TransactionRow{QuantityOut: neg}, wantErr: true},
		{name: "negative in", row: model.TransactionRow{QuantityIn: neg}, wantErr: true},
		{name: "negative size", row: model.TransactionRow{Size: neg}, wantErr: true},
		{name: "negative rate", row: model.TransactionRow{RatePerUnit: neg}, wantErr: true},
		{name: "outstanding line", row: model.TransactionRow{Serial: model.OutstandingSerial}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRows([]model.TransactionRow{tt.row})
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRows() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRow) {
				t.Errorf("validateRows() error = %v, want ErrInvalidRow", err)
			}
		})
	}
}
