package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/bhada/internal/model"
)

func TestSQLiteStorage_ReplaceRules(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := []model.RawRule{
		{ItemName: "પ્લેટ", Method: "નક્કી", FixedRate: "30", MinimumDays: "10"},
		{ItemName: "ટેકા", Method: "સાઈઝ પ્રમાણે", SizeFactor: "2", Notes: "per foot"},
		{ItemName: "પ્લેટ", Method: "નક્કી", FixedRate: "45"},
	}
	if err := store.ReplaceRules(ctx, first); err != nil {
		t.Fatalf("ReplaceRules() error = %v", err)
	}

	raws, err := store.GetRawRules(ctx)
	if err != nil {
		t.Fatalf("GetRawRules() error = %v", err)
	}
	if len(raws) != len(first) {
		t.Fatalf("got %d rules, want %d", len(raws), len(first))
	}
	for i := range first {
		if raws[i] != first[i] {
			t.Errorf("rule %d = %+v, want %+v", i, raws[i], first[i])
		}
	}

	rules, err := store.GetRules(ctx)
	if err != nil {
		t.Fatalf("GetRules() error = %v", err)
	}
	if rules[0].Method != model.Fixed || rules[0].MinimumDays != 10 {
		t.Errorf("rule 0 parsed as %+v", rules[0])
	}
	if rules[1].Method != model.SizeBased {
		t.Errorf("rule 1 method = %v, want size", rules[1].Method)
	}

	// Replacing invalidates the cache
	if err := store.ReplaceRules(ctx, first[:1]); err != nil {
		t.Fatalf("ReplaceRules() error = %v", err)
	}
	rules, err = store.GetRules(ctx)
	if err != nil {
		t.Fatalf("GetRules() error = %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("got %d rules after replace, want 1", len(rules))
	}
}

func TestSQLiteStorage_GetRulesCacheIsolation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.ReplaceRules(ctx, []model.RawRule{{ItemName: "પ્લેટ"}}); err != nil {
		t.Fatalf("ReplaceRules() error = %v", err)
	}

	rules, err := store.GetRules(ctx)
	if err != nil {
		t.Fatalf("GetRules() error = %v", err)
	}
	rules[0].ItemName = "changed"

	again, err := store.GetRules(ctx)
	if err != nil {
		t.Fatalf("GetRules() error = %v", err)
	}
	if again[0].ItemName != "પ્લેટ" {
		t.Errorf("cache was modified through a returned slice: %q", again[0].ItemName)
	}
}

func TestSQLiteStorage_ReplaceRulesRejectsBlankNames(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.ReplaceRules(ctx, []model.RawRule{{ItemName: "પ્લેટ"}}); err != nil {
		t.Fatalf("ReplaceRules() error = %v", err)
	}

	err := store.ReplaceRules(ctx, []model.RawRule{{ItemName: ""}})
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("ReplaceRules() error = %v, want ErrInvalidRule", err)
	}

	// Existing rules untouched
	raws, err := store.GetRawRules(ctx)
	if err != nil {
		t.Fatalf("GetRawRules() error = %v", err)
	}
	if len(raws) != 1 {
		t.Errorf("got %d rules, want 1", len(raws))
	}
}

func TestSQLiteStorage_EmptyRules(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	rules, err := store.GetRules(context.Background())
	if err != nil {
		t.Fatalf("GetRules() error = %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("got %d rules, want 0", len(rules))
	}
}
