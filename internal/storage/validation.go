// Package storage provides the data persistence layer for the bhada application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/bhada/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrInvalidRow      = errors.New("invalid ledger row")
	ErrCustomerMissing = errors.New("customer not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRules rejects rules without an item name. Numeric cells are stored
// as entered; they degrade when parsed, not when saved.
func validateRules(rules []model.RawRule) error {
	for i, r := range rules {
		if strings.TrimSpace(r.ItemName) == "" {
			return fmt.Errorf("%w at index %d: missing item name", ErrInvalidRule, i)
		}
	}
	return nil
}

// validateRows rejects negative quantities, sizes and rates.
func validateRows(rows []model.TransactionRow) error {
	for i, r := range rows {
		switch {
		case r.QuantityOut.IsNegative():
			return fmt.Errorf("%w at index %d: negative quantity out", ErrInvalidRow, i)
		case r.QuantityIn.IsNegative():
			return fmt.Errorf("%w at index %d: negative quantity in", ErrInvalidRow, i)
		case r.Size.IsNegative():
			return fmt.Errorf("%w at index %d: negative size", ErrInvalidRow, i)
		case r.RatePerUnit.IsNegative():
			return fmt.Errorf("%w at index %d: negative rate", ErrInvalidRow, i)
		case r.Serial == model.OutstandingSerial:
			return fmt.Errorf("%w at index %d: outstanding lines are not stored", ErrInvalidRow, i)
		}
	}
	return nil
}
