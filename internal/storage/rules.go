package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/bhada/internal/model"
)

// ReplaceRules swaps the whole control panel for rules, keeping their order.
func (s *SQLiteStorage) ReplaceRules(ctx context.Context, rules []model.RawRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRules(rules); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rules (position, item_name, size, fixed_rate, size_factor, minimum_days, method, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rule insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rules {
		if _, err := stmt.ExecContext(ctx, i, r.ItemName, r.Size, r.FixedRate, r.SizeFactor, r.MinimumDays, r.Method, r.Notes); err != nil {
			return fmt.Errorf("failed to insert rule %q: %w", r.ItemName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}

	s.setRuleCache(nil)
	slog.Debug("replaced rules", "count", len(rules))
	return nil
}

// GetRawRules returns the control panel as entered, in table order.
func (s *SQLiteStorage) GetRawRules(ctx context.Context) ([]model.RawRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_name, size, fixed_rate, size_factor, minimum_days, method, notes
		FROM rules
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var raws []model.RawRule
	for rows.Next() {
		var r model.RawRule
		if err := rows.Scan(&r.ItemName, &r.Size, &r.FixedRate, &r.SizeFactor, &r.MinimumDays, &r.Method, &r.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		raws = append(raws, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return raws, nil
}

// GetRules returns the parsed rules in table order.
func (s *SQLiteStorage) GetRules(ctx context.Context) ([]model.Rule, error) {
	if cached, ok := s.cachedRules(); ok {
		return cached, nil
	}

	raws, err := s.GetRawRules(ctx)
	if err != nil {
		return nil, err
	}

	rules := model.ParseRules(raws)
	s.setRuleCache(rules)

	out := make([]model.Rule, len(rules))
	copy(out, rules)
	return out, nil
}
