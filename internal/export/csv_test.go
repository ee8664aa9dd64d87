package export

import (
	"strings"
	"testing"
	"time"

	"celengan/internal/core"
)

func TestCSVLayout(t *testing.T) {
	accounts := []core.Account{
		{Name: "BCA", Type: core.Cash, Category: core.Core, Balance: 1_500_000},
		{Name: "Bibit", Type: core.Investment, Category: core.Satellite, Balance: 3_000_000},
	}
	transactions := []core.Transaction{
		{Date: core.NewDate(2026, 8, 15), Description: "Kopi", Category: "food", Amount: 25_000},
		{Date: core.NewDate(2026, 8, 1), Description: "Gaji", Category: "", Amount: 5_000_000},
	}
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	got := CSV(accounts, transactions, now)
	want := strings.Join([]string{
		"Celengan Financial Summary - August 2026",
		"",
		"ACCOUNTS",
		"Name,Type,Category,Balance",
		"BCA,cash,core,1500000",
		"Bibit,investment,satellite,3000000",
		"",
		"TRANSACTIONS",
		"Date,Description,Category,Amount",
		"2026-08-15,Kopi,food,25000",
		"2026-08-01,Gaji,,5000000",
		"",
	}, "\n")

	if got != want {
		t.Errorf("CSV layout mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestCSVEmpty(t *testing.T) {
	got := CSV(nil, nil, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(got, "Celengan Financial Summary - January 2026\n") {
		t.Errorf("title line missing:\n%s", got)
	}
	if !strings.Contains(got, "ACCOUNTS\nName,Type,Category,Balance\n") {
		t.Errorf("accounts header missing:\n%s", got)
	}
	if !strings.Contains(got, "TRANSACTIONS\nDate,Description,Category,Amount\n") {
		t.Errorf("transactions header missing:\n%s", got)
	}
}

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	if got != "celengan-2026-08.csv" {
		t.Errorf("Filename = %q, want celengan-2026-08.csv", got)
	}
}
