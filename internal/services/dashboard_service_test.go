package services

import (
	"context"
	"testing"
	"time"

	"celengan/internal/core"
)

func TestDashboardSeedsDefaultSettings(t *testing.T) {
	ctx := context.Background()
	_, mem := newTestBalanceService()
	dash := NewDashboardService(mem)

	d, err := dash.Build(ctx, testUser)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Settings.MonthlyIncome != 20_000_000 {
		t.Errorf("default monthly income = %d, want 20000000", d.Settings.MonthlyIncome)
	}
	if d.Settings.GoalTarget != 100_000_000 {
		t.Errorf("default goal target = %d, want 100000000", d.Settings.GoalTarget)
	}
	if got := d.Settings.GoalTargetDate.String(); got != "2027-11-01" {
		t.Errorf("default goal date = %s, want 2027-11-01", got)
	}

	// Second build reads the persisted row, not a new seed.
	stored, err := mem.GetSettings(ctx, testUser)
	if err != nil {
		t.Fatalf("settings were not persisted: %v", err)
	}
	if stored.MonthlyIncome != 20_000_000 {
		t.Errorf("persisted income = %d, want 20000000", stored.MonthlyIncome)
	}
}

func TestDashboardReconciliation(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestBalanceService()
	dash := NewDashboardService(mem)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	dash.now = func() time.Time { return now }

	// Worked example: previous total 10M, income 5M, current total 12M,
	// 2M of spending logged this month.
	a := mustCreateAccount(t, svc, "BCA", 10_000_000)
	if _, err := svc.SetBalance(ctx, testUser, a.ID, 12_000_000); err != nil {
		t.Fatalf("SetBalance: %v", err)
	}
	if err := dash.UpdateSettings(ctx, core.Settings{
		UserID:        testUser,
		MonthlyIncome: 5_000_000,
		GoalTarget:    100_000_000,
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, core.Transaction{
		UserID: testUser, AccountID: a.ID, Description: "monthly bills",
		Amount: 2_000_000, Type: core.Spending, Date: core.NewDate(2026, 8, 5),
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	d, err := dash.Build(ctx, testUser)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if d.NetWorth != 12_000_000 {
		t.Errorf("net worth = %d, want 12000000", d.NetWorth)
	}
	if d.Reconciliation.ExpectedTotal != 15_000_000 {
		t.Errorf("expected total = %d, want 15000000", d.Reconciliation.ExpectedTotal)
	}
	if d.Reconciliation.RawGap != 3_000_000 {
		t.Errorf("raw gap = %d, want 3000000", d.Reconciliation.RawGap)
	}
	if d.Reconciliation.UnaccountedSpending != 1_000_000 {
		t.Errorf("unaccounted spending = %d, want 1000000", d.Reconciliation.UnaccountedSpending)
	}
	if d.MonthSpending != 2_000_000 || d.MonthIncome != 0 {
		t.Errorf("month totals = spending %d income %d, want 2000000 and 0",
			d.MonthSpending, d.MonthIncome)
	}
	if len(d.Series) != 1 || d.Series[0].Month != "2026-08" || d.Series[0].NetWorth != 12_000_000 {
		t.Errorf("series = %+v, want single 2026-08 point at 12000000", d.Series)
	}
}

func TestDashboardPerAccountDeltas(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestBalanceService()
	dash := NewDashboardService(mem)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }
	dash.now = func() time.Time { return base.AddDate(0, 0, 20) }

	a := mustCreateAccount(t, svc, "Bibit", 3_000_000)
	if _, err := svc.SetBalance(ctx, testUser, a.ID, 3_000_000); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	clock = base.AddDate(0, 0, 10)
	if _, err := svc.SetBalance(ctx, testUser, a.ID, 2_700_000); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, core.Transaction{
		UserID: testUser, AccountID: a.ID, Description: "topup fee",
		Amount: 250_000, Type: core.Spending, Date: core.NewDate(2026, 8, 6),
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	d, err := dash.Build(ctx, testUser)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.AccountDeltas) != 1 {
		t.Fatalf("delta count = %d, want 1", len(d.AccountDeltas))
	}
	delta := d.AccountDeltas[0]
	if delta.RawDelta != -300_000 {
		t.Errorf("raw delta = %d, want -300000", delta.RawDelta)
	}
	if delta.LinkedNet != -250_000 {
		t.Errorf("linked net = %d, want -250000", delta.LinkedNet)
	}
	if delta.Unaccounted != -50_000 {
		t.Errorf("unaccounted = %d, want -50000", delta.Unaccounted)
	}
	if !delta.NeedsReview() {
		t.Error("delta with nonzero unaccounted should need review")
	}
}

func TestDashboardEmptyUser(t *testing.T) {
	_, mem := newTestBalanceService()
	dash := NewDashboardService(mem)

	d, err := dash.Build(context.Background(), "fresh-user")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.NetWorth != 0 {
		t.Errorf("net worth = %d, want 0", d.NetWorth)
	}
	if len(d.Series) != 0 {
		t.Errorf("series = %+v, want empty", d.Series)
	}
	if len(d.AccountDeltas) != 0 {
		t.Errorf("account deltas = %+v, want empty", d.AccountDeltas)
	}
}
