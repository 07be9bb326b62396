package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCentsFromStringRoundsHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
	}{
		{"12.34", 1234},
		{"12.345", 1235},
		{"12.344", 1234},
		{"0.005", 1},
		{"0", 0},
		{"100", 10000},
	}
	for _, tc := range cases {
		got, err := NewCentsFromString(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNewCentsFromStringInvalid(t *testing.T) {
	if _, err := NewCentsFromString("abc"); err == nil {
		t.Fatal("expected error for invalid amount string")
	}
}

func TestCentsStringFixedTwoDecimals(t *testing.T) {
	if got := Cents(1200).String(); got != "12.00" {
		t.Fatalf("expected 12.00, got %s", got)
	}
	if got := Cents(5).String(); got != "0.05" {
		t.Fatalf("expected 0.05, got %s", got)
	}
	if got := Cents(-150).String(); got != "-1.50" {
		t.Fatalf("expected -1.50, got %s", got)
	}
}

func TestCentsPercentOfRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount  Cents
		percent int
		want    Cents
	}{
		{1000, 10, 100},
		{999, 10, 100},  // 99.9 分 -> 100
		{994, 10, 99},   // 99.4 分 -> 99
		{995, 10, 100},  // 99.5 分 -> 100
		{1, 50, 1},      // 0.5 分 -> 1
		{1000, 100, 1000},
		{0, 10, 0},
		{1000, 0, 0},
		{-100, 10, 0},
	}
	for _, tc := range cases {
		if got := tc.amount.PercentOf(tc.percent); got != tc.want {
			t.Fatalf("PercentOf(%d, %d%%): got %d, want %d", tc.amount, tc.percent, got, tc.want)
		}
	}
}

func TestCentsJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(Cents(1234))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"12.34"` {
		t.Fatalf("unexpected marshal output: %s", raw)
	}

	var fromString Cents
	if err := json.Unmarshal([]byte(`"56.78"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString != 5678 {
		t.Fatalf("expected 5678, got %d", fromString)
	}

	var fromNumber Cents
	if err := json.Unmarshal([]byte(`19.9`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber != 1990 {
		t.Fatalf("expected 1990, got %d", fromNumber)
	}
}

func TestNewCentsFromDecimal(t *testing.T) {
	if got := NewCentsFromDecimal(decimal.NewFromFloat(12.345)); got != 1235 {
		t.Fatalf("expected 1235, got %d", got)
	}
	if got := NewCentsFromDecimal(decimal.NewFromInt(7)); got != 700 {
		t.Fatalf("expected 700, got %d", got)
	}
}
