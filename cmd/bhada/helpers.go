package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/common"
	"github.com/Veraticus/bhada/internal/config"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/storage"
	"github.com/spf13/viper"
)

func loadSettings() (config.Settings, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// openStorage loads settings and opens the database in one step.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, config.Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, settings, err
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, settings, err
	}
	return store, settings, nil
}

// loadRuleTable builds the rule table from the stored control panel. An
// empty control panel is allowed; every row then reports a missing rule.
func loadRuleTable(ctx context.Context, store *storage.SQLiteStorage) (*billing.RuleTable, error) {
	rules, err := store.GetRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rules) == 0 {
		slog.Warn("control panel is empty; import rules with 'bhada rules import'")
	}
	return billing.NewRuleTable(rules), nil
}

// customerLines recomputes and expands one stored ledger.
func customerLines(ctx context.Context, store *storage.SQLiteStorage, customer string) ([]model.LedgerLine, error) {
	table, err := loadRuleTable(ctx, store)
	if err != nil {
		return nil, err
	}
	rows, err := store.GetLedger(ctx, customer)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("no ledger for customer %q", customer), err)
	}
	return billing.Expand(billing.Recompute(table, rows)), nil
}

func sortedCustomers[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
