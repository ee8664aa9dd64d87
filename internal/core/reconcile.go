package core

import (
	"sort"
)

// GlobalInput feeds the whole-portfolio reconciliation for the current
// calendar month.
type GlobalInput struct {
	// CurrentTotal is the live balance summed across all accounts.
	CurrentTotal int64
	// PrevTotal sums the previous_balance of each account's newest snapshot.
	PrevTotal int64
	// MonthlyIncome comes from the user's settings.
	MonthlyIncome int64
	// NetTransactionSpending is spending minus income over transactions dated
	// in the current calendar month.
	NetTransactionSpending int64
}

type GlobalResult struct {
	ExpectedTotal int64
	RawGap        int64
	// UnaccountedSpending is the portion of the observed balance drop that no
	// logged transaction explains. Floored at zero: overshooting transactions
	// never produce a negative "credit".
	UnaccountedSpending int64
	// TotalDelta is the display figure "observed total spending including the
	// income offset", floored at zero the same way.
	TotalDelta int64
}

// ReconcileGlobal compares what the total balance should be (previous total
// plus monthly income) against what it actually is, then subtracts the
// spending the user already logged.
func ReconcileGlobal(in GlobalInput) GlobalResult {
	expected := in.PrevTotal + in.MonthlyIncome
	rawGap := expected - in.CurrentTotal

	unaccounted := rawGap - in.NetTransactionSpending
	if unaccounted < 0 {
		unaccounted = 0
	}
	totalDelta := expected - in.CurrentTotal
	if totalDelta < 0 {
		totalDelta = 0
	}

	return GlobalResult{
		ExpectedTotal:       expected,
		RawGap:              rawGap,
		UnaccountedSpending: unaccounted,
		TotalDelta:          totalDelta,
	}
}

// AccountDelta is the per-account reconciliation for the window between an
// account's two newest snapshots.
type AccountDelta struct {
	AccountID   string
	AccountName string
	// RawDelta is the balance change the newest snapshot records.
	RawDelta int64
	// LinkedNet is income minus spending over the transactions linked to the
	// window.
	LinkedNet int64
	// Unaccounted is RawDelta - LinkedNet. Signed on purpose: negative means
	// logged transactions exceed the observed change (e.g. after a manual
	// correction).
	Unaccounted int64
	WindowStart Date
	WindowEnd   Date
}

// NeedsReview reports whether the delta should be surfaced to the user as a
// "needs explanation" prompt.
func (d AccountDelta) NeedsReview() bool {
	return d.Unaccounted != 0
}

// SortNewestFirst orders snapshots by recorded time descending, breaking
// second-granularity timestamp collisions by insertion order (seq).
func SortNewestFirst(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].RecordedAt.Equal(snapshots[j].RecordedAt) {
			return snapshots[i].Seq > snapshots[j].Seq
		}
		return snapshots[i].RecordedAt.After(snapshots[j].RecordedAt)
	})
}

// LatestPerAccount picks each account's newest snapshot from a newest-first
// ordered list.
func LatestPerAccount(snapshots []Snapshot) map[string]Snapshot {
	latest := make(map[string]Snapshot)
	for _, s := range snapshots {
		if _, seen := latest[s.AccountID]; !seen {
			latest[s.AccountID] = s
		}
	}
	return latest
}

// WindowStarts returns, per account, the recorded date of the snapshot
// immediately preceding the newest one. Accounts with a single snapshot are
// absent from the result; their reconciliation window starts at the epoch.
func WindowStarts(snapshots []Snapshot, latest map[string]Snapshot) map[string]Date {
	starts := make(map[string]Date)
	for _, s := range snapshots {
		if l, ok := latest[s.AccountID]; ok && l.ID == s.ID {
			continue
		}
		if _, seen := starts[s.AccountID]; !seen {
			starts[s.AccountID] = DateOf(s.RecordedAt)
		}
	}
	return starts
}

// ReconcilePerAccount computes an AccountDelta for every account that has at
// least one snapshot. Transactions count as linked when they reference the
// account and are dated within [windowStart, newest snapshot date], both ends
// inclusive; with no preceding snapshot every transaction ever recorded for
// the account is linked.
func ReconcilePerAccount(accounts []Account, snapshots []Snapshot, transactions []Transaction) []AccountDelta {
	ordered := make([]Snapshot, len(snapshots))
	copy(ordered, snapshots)
	SortNewestFirst(ordered)

	latest := LatestPerAccount(ordered)
	starts := WindowStarts(ordered, latest)

	deltas := make([]AccountDelta, 0, len(accounts))
	for _, a := range accounts {
		s, ok := latest[a.ID]
		if !ok {
			// No snapshot yet: the account is still "initial", nothing to
			// reconcile.
			continue
		}

		windowStart := starts[a.ID] // zero value = epoch
		windowEnd := DateOf(s.RecordedAt)

		var linkedNet int64
		for _, t := range transactions {
			if t.AccountID != a.ID {
				continue
			}
			if t.Date.Before(windowStart.Time) || t.Date.After(windowEnd.Time) {
				continue
			}
			linkedNet += t.SignedAmount()
		}

		rawDelta := s.BalanceAtTime - s.PreviousBalance
		deltas = append(deltas, AccountDelta{
			AccountID:   a.ID,
			AccountName: a.Name,
			RawDelta:    rawDelta,
			LinkedNet:   linkedNet,
			Unaccounted: rawDelta - linkedNet,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
		})
	}
	return deltas
}

// MonthTransactionTotals sums spending and income over transactions dated in
// the calendar month that contains ref.
func MonthTransactionTotals(transactions []Transaction, ref Date) (spending, income int64) {
	key := ref.MonthKey()
	for _, t := range transactions {
		if t.Date.MonthKey() != key {
			continue
		}
		switch t.Type {
		case Spending:
			spending += t.Amount
		case Income:
			income += t.Amount
		}
	}
	return spending, income
}
