package core

import (
	"fmt"
	"sort"
	"time"
)

// NetWorth sums the live balances of all accounts.
func NetWorth(accounts []Account) int64 {
	var total int64
	for _, a := range accounts {
		total += a.Balance
	}
	return total
}

// SeriesPoint is one calendar month of the net-worth trend.
type SeriesPoint struct {
	Month    string
	NetWorth int64
}

// DefaultSeriesWindow is the number of trailing months the dashboard chart
// shows.
const DefaultSeriesWindow = 6

// BuildSeries aggregates snapshots into one point per calendar month: for
// each (month, account) pair only the chronologically latest snapshot counts,
// and the month's net worth sums those balances. Accounts without a snapshot
// in a given month contribute nothing to it; their last known balance is not
// carried forward.
//
// Months are sorted ascending and truncated to the most recent monthsWindow
// entries. Empty input yields an empty series.
func BuildSeries(snapshots []Snapshot, monthsWindow int) []SeriesPoint {
	if monthsWindow <= 0 {
		monthsWindow = DefaultSeriesWindow
	}
	if len(snapshots) == 0 {
		return nil
	}

	ordered := make([]Snapshot, len(snapshots))
	copy(ordered, snapshots)
	SortNewestFirst(ordered)

	// Walking newest first, the first snapshot seen per (month, account) is
	// that month's final balance for the account.
	type monthAccount struct {
		month     string
		accountID string
	}
	latest := make(map[monthAccount]int64)
	for _, s := range ordered {
		key := monthAccount{month: s.RecordedAt.UTC().Format("2006-01"), accountID: s.AccountID}
		if _, seen := latest[key]; !seen {
			latest[key] = s.BalanceAtTime
		}
	}

	totals := make(map[string]int64)
	for key, balance := range latest {
		totals[key.month] += balance
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > monthsWindow {
		months = months[len(months)-monthsWindow:]
	}

	series := make([]SeriesPoint, len(months))
	for i, m := range months {
		series[i] = SeriesPoint{Month: m, NetWorth: totals[m]}
	}
	return series
}

type RebalanceAction string

const (
	BuyCore             RebalanceAction = "buy_core"
	AccumulateSatellite RebalanceAction = "accumulate_satellite"
	Balanced            RebalanceAction = "balanced"
)

// satelliteTarget is the share of the investment portfolio the satellite
// sleeve should hold (80/20 core/satellite strategy).
const satelliteTarget = 0.2

type RebalanceSuggestion struct {
	SatellitePct float64
	CorePct      float64
	Action       RebalanceAction
	Message      string
}

// SuggestRebalancing compares the satellite share of investment accounts
// against the 80/20 target.
func SuggestRebalancing(accounts []Account) RebalanceSuggestion {
	var total, satellite int64
	for _, a := range accounts {
		if a.Type != Investment {
			continue
		}
		total += a.Balance
		if a.Category == Satellite {
			satellite += a.Balance
		}
	}

	if total == 0 {
		return RebalanceSuggestion{Action: Balanced, Message: "No investment accounts yet."}
	}

	satellitePct := float64(satellite) / float64(total)
	corePct := 1 - satellitePct

	switch {
	case satellitePct > satelliteTarget:
		return RebalanceSuggestion{
			SatellitePct: satellitePct,
			CorePct:      corePct,
			Action:       BuyCore,
			Message: fmt.Sprintf("Satellite is %.1f%% of portfolio. Consider buying more Core (Gold) to rebalance toward 80/20.",
				satellitePct*100),
		}
	case satellitePct < satelliteTarget:
		return RebalanceSuggestion{
			SatellitePct: satellitePct,
			CorePct:      corePct,
			Action:       AccumulateSatellite,
			Message: fmt.Sprintf("Satellite is %.1f%% of portfolio. Consider accumulating more Satellite (Crypto/Stocks) to reach 20%%.",
				satellitePct*100),
		}
	default:
		return RebalanceSuggestion{
			SatellitePct: satellitePct,
			CorePct:      corePct,
			Action:       Balanced,
			Message:      "Portfolio is balanced at 80% Core / 20% Satellite.",
		}
	}
}

type GoalProgress struct {
	ProgressPct     float64
	MonthsRemaining int
	MonthlyNeeded   int64
}

// CalcGoalProgress measures net worth against the savings goal: percent done
// (capped at 100), whole calendar months until the target date (floored at
// zero) and how much must be saved per remaining month.
func CalcGoalProgress(netWorth, target int64, targetDate, today time.Time) GoalProgress {
	var pct float64
	if target > 0 {
		pct = float64(netWorth) / float64(target) * 100
		if pct > 100 {
			pct = 100
		}
	}

	months := (targetDate.Year()-today.Year())*12 + int(targetDate.Month()) - int(today.Month())
	if months < 0 {
		months = 0
	}

	remaining := target - netWorth
	if remaining < 0 {
		remaining = 0
	}
	monthlyNeeded := remaining
	if months > 0 {
		monthlyNeeded = remaining / int64(months)
	}

	return GoalProgress{
		ProgressPct:     pct,
		MonthsRemaining: months,
		MonthlyNeeded:   monthlyNeeded,
	}
}
