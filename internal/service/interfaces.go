// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/bhada/internal/model"
)

// Storage defines the contract for our persistence layer.
// Only source ledger rows are stored; outstanding lines are always regenerated.
type Storage interface {
	// Rule operations
	ReplaceRules(ctx context.Context, rules []model.RawRule) error
	GetRules(ctx context.Context) ([]model.Rule, error)

	// Customer operations
	UpsertCustomer(ctx context.Context, name string) (*model.Customer, error)
	GetCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomerByName(ctx context.Context, name string) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, name string) error

	// Ledger operations
	SaveLedger(ctx context.Context, customer string, rows []model.TransactionRow) error
	GetLedger(ctx context.Context, customer string) ([]model.TransactionRow, error)
	GetAllLedgers(ctx context.Context) (map[string][]model.TransactionRow, error)

	// Maintenance
	Migrate(ctx context.Context) error
	Close() error
}

// LedgerWriter publishes an expanded ledger to an external sink.
type LedgerWriter interface {
	WriteLedger(ctx context.Context, customer string, lines []model.LedgerLine) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
