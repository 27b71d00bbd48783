// Package testutil provides test helpers for bhada: a migrated in-memory
// store and builders for ledger rows and rules.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database and closes it when the
// test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedLedger("Ramesh", testutil.NewRow("પ્લેટ").Out(10).Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &TestDB{Storage: store, t: t}
}

// SeedRules replaces the stored control panel.
func (db *TestDB) SeedRules(rules ...model.RawRule) {
	db.t.Helper()
	if err := db.Storage.ReplaceRules(context.Background(), rules); err != nil {
		db.t.Fatalf("failed to seed rules: %v", err)
	}
}

// SeedLedger stores rows as the customer's ledger.
func (db *TestDB) SeedLedger(customer string, rows ...model.TransactionRow) {
	db.t.Helper()
	if err := db.Storage.SaveLedger(context.Background(), customer, rows); err != nil {
		db.t.Fatalf("failed to seed ledger for %q: %v", customer, err)
	}
}
