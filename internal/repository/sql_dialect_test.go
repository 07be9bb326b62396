package repository

import (
	"strings"
	"testing"
)

func TestDayTextExprByDialectSQLite(t *testing.T) {
	got := dayTextExprByDialect("sqlite", "created_at")
	want := "CAST(date(created_at) AS TEXT)"
	if got != want {
		t.Fatalf("sqlite day expr mismatch, want %s got %s", want, got)
	}
}

func TestDayTextExprByDialectPostgres(t *testing.T) {
	got := dayTextExprByDialect("postgres", "created_at")
	want := "to_char(created_at, 'YYYY-MM-DD')"
	if got != want {
		t.Fatalf("postgres day expr mismatch, want %s got %s", want, got)
	}
}

func TestBuildSearchLikeCondition(t *testing.T) {
	condition, argCount := buildSearchLikeConditionByDialect("sqlite", []string{"name", "sku", ""})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if !strings.Contains(condition, "name LIKE ?") {
		t.Fatalf("condition should contain name LIKE, got %s", condition)
	}
	if strings.Contains(condition, "ILIKE") {
		t.Fatalf("sqlite condition should not use ILIKE, got %s", condition)
	}

	condition, _ = buildSearchLikeConditionByDialect("postgres", []string{"name"})
	if !strings.Contains(condition, "name ILIKE ?") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
