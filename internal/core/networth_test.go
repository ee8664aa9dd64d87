package core

import (
	"testing"
	"time"
)

func snapAt(account string, balance int64, year, month, day int, seq int64) Snapshot {
	return Snapshot{
		ID:            account + "-" + time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("20060102"),
		AccountID:     account,
		BalanceAtTime: balance,
		RecordedAt:    time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC),
		Seq:           seq,
	}
}

func TestNetWorth(t *testing.T) {
	accounts := []Account{
		{Balance: 1_000_000},
		{Balance: 500_000},
		{Balance: -200_000},
	}
	if got := NetWorth(accounts); got != 1_300_000 {
		t.Fatalf("NetWorth = %d, want 1300000", got)
	}
	if got := NetWorth(nil); got != 0 {
		t.Fatalf("NetWorth(nil) = %d, want 0", got)
	}
}

func TestBuildSeriesWindow(t *testing.T) {
	// Eight distinct months across two accounts.
	var snaps []Snapshot
	seq := int64(1)
	for m := 1; m <= 8; m++ {
		snaps = append(snaps, snapAt("a1", int64(m)*100, 2026, m, 10, seq))
		seq++
		snaps = append(snaps, snapAt("a2", int64(m)*10, 2026, m, 20, seq))
		seq++
	}

	series := BuildSeries(snaps, 6)
	if len(series) != 6 {
		t.Fatalf("expected 6 points, got %d", len(series))
	}
	if series[0].Month != "2026-03" || series[5].Month != "2026-08" {
		t.Fatalf("unexpected range: %s .. %s", series[0].Month, series[5].Month)
	}
	for i := 1; i < len(series); i++ {
		if series[i].Month <= series[i-1].Month {
			t.Fatalf("series not ascending at %d", i)
		}
	}
	// Each point sums the latest balance per account within that month.
	if series[5].NetWorth != 8*100+8*10 {
		t.Fatalf("2026-08 net worth = %d, want %d", series[5].NetWorth, 8*100+8*10)
	}
}

func TestBuildSeriesKeepsLatestSnapshotPerMonth(t *testing.T) {
	snaps := []Snapshot{
		snapAt("a1", 100, 2026, 8, 1, 1),
		snapAt("a1", 250, 2026, 8, 25, 2), // later in the same month wins
	}
	series := BuildSeries(snaps, 6)
	if len(series) != 1 {
		t.Fatalf("expected 1 point, got %d", len(series))
	}
	if series[0].NetWorth != 250 {
		t.Fatalf("NetWorth = %d, want 250", series[0].NetWorth)
	}
}

func TestBuildSeriesNoCarryForward(t *testing.T) {
	// a2 has no snapshot in August; its July balance is not carried forward.
	snaps := []Snapshot{
		snapAt("a1", 100, 2026, 7, 10, 1),
		snapAt("a2", 900, 2026, 7, 11, 2),
		snapAt("a1", 150, 2026, 8, 10, 3),
	}
	series := BuildSeries(snaps, 6)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[1].Month != "2026-08" || series[1].NetWorth != 150 {
		t.Fatalf("august point = %+v, want 150", series[1])
	}
}

func TestBuildSeriesEmpty(t *testing.T) {
	if got := BuildSeries(nil, 6); len(got) != 0 {
		t.Fatalf("expected empty series, got %d points", len(got))
	}
}

func TestSuggestRebalancing(t *testing.T) {
	cases := []struct {
		name     string
		accounts []Account
		want     RebalanceAction
	}{
		{"no investments", []Account{{Type: Cash, Category: Core, Balance: 100}}, Balanced},
		{"satellite heavy", []Account{
			{Type: Investment, Category: Core, Balance: 700},
			{Type: Investment, Category: Satellite, Balance: 300},
		}, BuyCore},
		{"satellite light", []Account{
			{Type: Investment, Category: Core, Balance: 950},
			{Type: Investment, Category: Satellite, Balance: 50},
		}, AccumulateSatellite},
		{"on target", []Account{
			{Type: Investment, Category: Core, Balance: 800},
			{Type: Investment, Category: Satellite, Balance: 200},
		}, Balanced},
	}
	for _, tc := range cases {
		got := SuggestRebalancing(tc.accounts)
		if got.Action != tc.want {
			t.Fatalf("%s: action = %s, want %s", tc.name, got.Action, tc.want)
		}
		if got.Message == "" {
			t.Fatalf("%s: empty message", tc.name)
		}
	}
}

func TestCalcGoalProgress(t *testing.T) {
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	target := time.Date(2027, 11, 1, 0, 0, 0, 0, time.UTC)

	got := CalcGoalProgress(25_000_000, 100_000_000, target, today)
	if got.MonthsRemaining != 15 {
		t.Fatalf("MonthsRemaining = %d, want 15", got.MonthsRemaining)
	}
	if got.ProgressPct != 25 {
		t.Fatalf("ProgressPct = %.1f, want 25", got.ProgressPct)
	}
	if got.MonthlyNeeded != 75_000_000/15 {
		t.Fatalf("MonthlyNeeded = %d, want %d", got.MonthlyNeeded, int64(75_000_000/15))
	}

	// Past target date and overshot goal.
	done := CalcGoalProgress(120_000_000, 100_000_000, today, target)
	if done.ProgressPct != 100 {
		t.Fatalf("ProgressPct = %.1f, want 100", done.ProgressPct)
	}
	if done.MonthsRemaining != 0 {
		t.Fatalf("MonthsRemaining = %d, want 0", done.MonthsRemaining)
	}
	if done.MonthlyNeeded != 0 {
		t.Fatalf("MonthlyNeeded = %d, want 0", done.MonthlyNeeded)
	}
}
