package core

import (
	"testing"
	"time"
)

func TestReconcileGlobal(t *testing.T) {
	got := ReconcileGlobal(GlobalInput{
		CurrentTotal:           12_000_000,
		PrevTotal:              10_000_000,
		MonthlyIncome:          5_000_000,
		NetTransactionSpending: 2_000_000,
	})

	if got.ExpectedTotal != 15_000_000 {
		t.Fatalf("ExpectedTotal = %d, want 15000000", got.ExpectedTotal)
	}
	if got.RawGap != 3_000_000 {
		t.Fatalf("RawGap = %d, want 3000000", got.RawGap)
	}
	if got.UnaccountedSpending != 1_000_000 {
		t.Fatalf("UnaccountedSpending = %d, want 1000000", got.UnaccountedSpending)
	}
	if got.TotalDelta != 3_000_000 {
		t.Fatalf("TotalDelta = %d, want 3000000", got.TotalDelta)
	}
}

func TestReconcileGlobalNeverNegative(t *testing.T) {
	cases := []GlobalInput{
		// Logged transactions exceed the observed gap.
		{CurrentTotal: 14_000_000, PrevTotal: 10_000_000, MonthlyIncome: 5_000_000, NetTransactionSpending: 2_000_000},
		// Balance grew beyond income.
		{CurrentTotal: 20_000_000, PrevTotal: 10_000_000, MonthlyIncome: 5_000_000, NetTransactionSpending: 0},
		// Exact match.
		{CurrentTotal: 12_000_000, PrevTotal: 10_000_000, MonthlyIncome: 5_000_000, NetTransactionSpending: 3_000_000},
	}
	for i, in := range cases {
		got := ReconcileGlobal(in)
		if got.UnaccountedSpending != 0 {
			t.Fatalf("case %d: UnaccountedSpending = %d, want 0", i, got.UnaccountedSpending)
		}
		if got.TotalDelta < 0 {
			t.Fatalf("case %d: TotalDelta = %d, want >= 0", i, got.TotalDelta)
		}
	}
}

func TestReconcilePerAccountSingleSnapshotUsesEpochWindow(t *testing.T) {
	acc := Account{ID: "a1", Name: "BCA"}
	snaps := []Snapshot{
		{ID: "s1", AccountID: "a1", PreviousBalance: 1_000_000, BalanceAtTime: 1_200_000,
			RecordedAt: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC), Seq: 1},
	}
	// Transactions recorded long before the snapshot are still linked because
	// the window starts at the epoch.
	txs := []Transaction{
		{ID: "t1", AccountID: "a1", Amount: 300_000, Type: Income, Date: NewDate(2020, 1, 1)},
		{ID: "t2", AccountID: "a1", Amount: 100_000, Type: Spending, Date: NewDate(2026, 8, 10)},
		{ID: "t3", AccountID: "other", Amount: 999_999, Type: Spending, Date: NewDate(2026, 8, 10)},
	}

	deltas := ReconcilePerAccount([]Account{acc}, snaps, txs)
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta, got %d", len(deltas))
	}
	d := deltas[0]
	if d.RawDelta != 200_000 {
		t.Fatalf("RawDelta = %d, want 200000", d.RawDelta)
	}
	if d.LinkedNet != 200_000 {
		t.Fatalf("LinkedNet = %d, want 200000", d.LinkedNet)
	}
	if d.Unaccounted != 0 {
		t.Fatalf("Unaccounted = %d, want 0", d.Unaccounted)
	}
	if !d.WindowStart.IsZero() {
		t.Fatalf("WindowStart = %v, want epoch", d.WindowStart)
	}
}

func TestReconcilePerAccountWindow(t *testing.T) {
	acc := Account{ID: "a1", Name: "Jago"}
	snaps := []Snapshot{
		{ID: "s1", AccountID: "a1", PreviousBalance: 0, BalanceAtTime: 2_000_000,
			RecordedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), Seq: 1},
		{ID: "s2", AccountID: "a1", PreviousBalance: 2_000_000, BalanceAtTime: 1_700_000,
			RecordedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), Seq: 2},
	}
	txs := []Transaction{
		// Dated before the window start: not linked.
		{ID: "t0", AccountID: "a1", Amount: 2_000_000, Type: Income, Date: NewDate(2026, 7, 28)},
		// Window start day itself is inclusive.
		{ID: "t1", AccountID: "a1", Amount: 100_000, Type: Spending, Date: NewDate(2026, 8, 1)},
		{ID: "t2", AccountID: "a1", Amount: 200_000, Type: Spending, Date: NewDate(2026, 8, 15)},
		// Window end day is inclusive.
		{ID: "t3", AccountID: "a1", Amount: 50_000, Type: Income, Date: NewDate(2026, 8, 20)},
		// After the window: not linked.
		{ID: "t4", AccountID: "a1", Amount: 999_000, Type: Spending, Date: NewDate(2026, 8, 21)},
	}

	deltas := ReconcilePerAccount([]Account{acc}, snaps, txs)
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta, got %d", len(deltas))
	}
	d := deltas[0]
	if d.RawDelta != -300_000 {
		t.Fatalf("RawDelta = %d, want -300000", d.RawDelta)
	}
	if d.LinkedNet != -250_000 {
		t.Fatalf("LinkedNet = %d, want -250000", d.LinkedNet)
	}
	if d.Unaccounted != -50_000 {
		t.Fatalf("Unaccounted = %d, want -50000", d.Unaccounted)
	}
	if got := d.WindowStart.String(); got != "2026-08-01" {
		t.Fatalf("WindowStart = %s, want 2026-08-01", got)
	}
}

func TestReconcilePerAccountSkipsAccountsWithoutSnapshots(t *testing.T) {
	accounts := []Account{{ID: "a1", Name: "BCA"}, {ID: "a2", Name: "Cash"}}
	snaps := []Snapshot{
		{ID: "s1", AccountID: "a1", PreviousBalance: 0, BalanceAtTime: 100,
			RecordedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Seq: 1},
	}

	deltas := ReconcilePerAccount(accounts, snaps, nil)
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta, got %d", len(deltas))
	}
	if deltas[0].AccountID != "a1" {
		t.Fatalf("unexpected account %s", deltas[0].AccountID)
	}
}

func TestSortNewestFirstTieBreaksByInsertionOrder(t *testing.T) {
	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	snaps := []Snapshot{
		{ID: "s1", AccountID: "a1", RecordedAt: at, Seq: 1},
		{ID: "s2", AccountID: "a1", RecordedAt: at, Seq: 2},
		{ID: "s3", AccountID: "a1", RecordedAt: at.Add(-time.Hour), Seq: 3},
	}
	SortNewestFirst(snaps)

	if snaps[0].ID != "s2" || snaps[1].ID != "s1" || snaps[2].ID != "s3" {
		t.Fatalf("unexpected order: %s %s %s", snaps[0].ID, snaps[1].ID, snaps[2].ID)
	}

	latest := LatestPerAccount(snaps)
	if latest["a1"].ID != "s2" {
		t.Fatalf("latest = %s, want s2", latest["a1"].ID)
	}
}

func TestMonthTransactionTotals(t *testing.T) {
	txs := []Transaction{
		{Amount: 100, Type: Spending, Date: NewDate(2026, 8, 1)},
		{Amount: 50, Type: Income, Date: NewDate(2026, 8, 30)},
		{Amount: 999, Type: Spending, Date: NewDate(2026, 7, 31)},
	}
	spending, income := MonthTransactionTotals(txs, NewDate(2026, 8, 15))
	if spending != 100 || income != 50 {
		t.Fatalf("totals = %d/%d, want 100/50", spending, income)
	}
}
