package core

import (
	"testing"
)

func TestAccountValidate(t *testing.T) {
	good := Account{Name: "BCA", Type: Cash, Category: Core, BalanceMode: Manual}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Account{
		{Name: "", Type: Cash, Category: Core, BalanceMode: Manual},
		{Name: "x", Type: "stocks", Category: Core, BalanceMode: Manual},
		{Name: "x", Type: Cash, Category: "fringe", BalanceMode: Manual},
		{Name: "x", Type: Cash, Category: Core, BalanceMode: "magic"},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Description: "Kopi", Amount: 25_000, Type: Spending, Date: NewDate(2026, 8, 30)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Description: "", Amount: 1, Type: Spending, Date: NewDate(2026, 8, 30)},
		{Description: "x", Amount: -1, Type: Spending, Date: NewDate(2026, 8, 30)},
		{Description: "x", Amount: 1, Type: "transfer", Date: NewDate(2026, 8, 30)},
		{Description: "x", Amount: 1, Type: Spending},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionSignedAmount(t *testing.T) {
	if got := (Transaction{Amount: 100, Type: Income}).SignedAmount(); got != 100 {
		t.Fatalf("income signed = %d, want 100", got)
	}
	if got := (Transaction{Amount: 100, Type: Spending}).SignedAmount(); got != -100 {
		t.Fatalf("spending signed = %d, want -100", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2026-08-30" {
		t.Fatalf("got %s", d.String())
	}
	if d.MonthKey() != "2026-08" {
		t.Fatalf("month key %s", d.MonthKey())
	}
	if _, err := ParseDate("30/08/2026"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}
