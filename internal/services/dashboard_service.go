package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"celengan/internal/core"
	"celengan/internal/store"
)

// Default settings seeded on first dashboard load, matching the onboarding
// defaults of the web app.
const (
	defaultMonthlyIncome  = 20_000_000
	defaultGoalTarget     = 100_000_000
	defaultGoalTargetDate = "2027-11-01"
)

// Dashboard is everything the overview page needs in one struct.
type Dashboard struct {
	Accounts       []core.Account
	Settings       core.Settings
	NetWorth       int64
	Reconciliation core.GlobalResult
	MonthSpending  int64
	MonthIncome    int64
	AccountDeltas  []core.AccountDelta
	Series         []core.SeriesPoint
	Rebalancing    core.RebalanceSuggestion
	Goal           core.GoalProgress
}

// DashboardService assembles the read model: it never writes balances, only
// settings (to seed defaults for new users).
type DashboardService struct {
	store store.Store
	now   func() time.Time
}

func NewDashboardService(st store.Store) *DashboardService {
	return &DashboardService{store: st, now: time.Now}
}

// Build loads accounts, settings, transactions and snapshot history and runs
// the month's reconciliation over them.
func (s *DashboardService) Build(ctx context.Context, userID string) (Dashboard, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list accounts: %w", err)
	}

	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	transactions, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}

	snapshots, err := s.store.ListSnapshots(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list snapshots: %w", err)
	}

	now := s.now().UTC()
	today := core.DateOf(now)

	netWorth := core.NetWorth(accounts)
	spending, income := core.MonthTransactionTotals(transactions, today)

	// prevTotal sums the previous_balance of each account's newest snapshot;
	// accounts that were never snapshotted contribute nothing.
	var prevTotal int64
	for _, snap := range core.LatestPerAccount(snapshots) {
		prevTotal += snap.PreviousBalance
	}

	global := core.ReconcileGlobal(core.GlobalInput{
		CurrentTotal:           netWorth,
		PrevTotal:              prevTotal,
		MonthlyIncome:          settings.MonthlyIncome,
		NetTransactionSpending: spending - income,
	})

	return Dashboard{
		Accounts:       accounts,
		Settings:       settings,
		NetWorth:       netWorth,
		Reconciliation: global,
		MonthSpending:  spending,
		MonthIncome:    income,
		AccountDeltas:  core.ReconcilePerAccount(accounts, snapshots, transactions),
		Series:         core.BuildSeries(snapshots, core.DefaultSeriesWindow),
		Rebalancing:    core.SuggestRebalancing(accounts),
		Goal:           core.CalcGoalProgress(netWorth, settings.GoalTarget, settings.GoalTargetDate.Time, now),
	}, nil
}

// Settings returns the user's settings, creating the default row on first
// access so the dashboard always has an income and a goal to reconcile
// against.
func (s *DashboardService) Settings(ctx context.Context, userID string) (core.Settings, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	goalDate, _ := core.ParseDate(defaultGoalTargetDate)
	settings = core.Settings{
		UserID:         userID,
		MonthlyIncome:  defaultMonthlyIncome,
		GoalTarget:     defaultGoalTarget,
		GoalTargetDate: goalDate,
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return core.Settings{}, fmt.Errorf("seed default settings: %w", err)
	}
	slog.InfoContext(ctx, "Seeded default settings", "user_id", userID)
	return settings, nil
}

// UpdateSettings persists edited settings, preserving the user id.
func (s *DashboardService) UpdateSettings(ctx context.Context, settings core.Settings) error {
	if settings.UserID == "" {
		return errors.New("settings user id required")
	}
	if settings.MonthlyIncome < 0 || settings.GoalTarget < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
