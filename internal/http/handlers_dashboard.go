package http

import (
	"log/slog"
	"net/http"
	"time"

	"celengan/internal/core"
	"celengan/internal/export"
	"celengan/internal/services"
)

type dashboardJSON struct {
	NetWorth        int64              `json:"net_worth"`
	NetWorthDisplay string             `json:"net_worth_display"`
	Accounts        []accountJSON      `json:"accounts"`
	ExpectedTotal   int64              `json:"expected_total"`
	Unaccounted     int64              `json:"unaccounted_spending"`
	TotalDelta      int64              `json:"total_delta"`
	MonthSpending   int64              `json:"month_spending"`
	MonthIncome     int64              `json:"month_income"`
	NeedsReview     []accountDeltaJSON `json:"needs_review"`
	Series          []seriesPointJSON  `json:"series"`
	Rebalancing     rebalancingJSON    `json:"rebalancing"`
	Goal            goalJSON           `json:"goal"`
}

type accountDeltaJSON struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	RawDelta    int64  `json:"raw_delta"`
	LinkedNet   int64  `json:"linked_net"`
	Unaccounted int64  `json:"unaccounted"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
}

type seriesPointJSON struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
	Label string `json:"label"`
}

type rebalancingJSON struct {
	SatellitePct float64 `json:"satellite_pct"`
	CorePct      float64 `json:"core_pct"`
	Action       string  `json:"action"`
	Message      string  `json:"message"`
}

type goalJSON struct {
	Target          int64   `json:"target"`
	ProgressPct     float64 `json:"progress_pct"`
	MonthsRemaining int     `json:"months_remaining"`
	MonthlyNeeded   int64   `json:"monthly_needed"`
}

func toDashboardJSON(d services.Dashboard) dashboardJSON {
	out := dashboardJSON{
		NetWorth:        d.NetWorth,
		NetWorthDisplay: core.FormatIDR(d.NetWorth),
		ExpectedTotal:   d.Reconciliation.ExpectedTotal,
		Unaccounted:     d.Reconciliation.UnaccountedSpending,
		TotalDelta:      d.Reconciliation.TotalDelta,
		MonthSpending:   d.MonthSpending,
		MonthIncome:     d.MonthIncome,
		Rebalancing: rebalancingJSON{
			SatellitePct: d.Rebalancing.SatellitePct,
			CorePct:      d.Rebalancing.CorePct,
			Action:       string(d.Rebalancing.Action),
			Message:      d.Rebalancing.Message,
		},
		Goal: goalJSON{
			Target:          d.Settings.GoalTarget,
			ProgressPct:     d.Goal.ProgressPct,
			MonthsRemaining: d.Goal.MonthsRemaining,
			MonthlyNeeded:   d.Goal.MonthlyNeeded,
		},
	}

	out.Accounts = make([]accountJSON, len(d.Accounts))
	for i, a := range d.Accounts {
		out.Accounts[i] = toAccountJSON(a)
	}

	// Only deltas that need an explanation are surfaced.
	for _, delta := range d.AccountDeltas {
		if !delta.NeedsReview() {
			continue
		}
		out.NeedsReview = append(out.NeedsReview, accountDeltaJSON{
			AccountID:   delta.AccountID,
			AccountName: delta.AccountName,
			RawDelta:    delta.RawDelta,
			LinkedNet:   delta.LinkedNet,
			Unaccounted: delta.Unaccounted,
			WindowStart: delta.WindowStart.String(),
			WindowEnd:   delta.WindowEnd.String(),
		})
	}

	out.Series = make([]seriesPointJSON, len(d.Series))
	for i, p := range d.Series {
		out.Series[i] = seriesPointJSON{
			Month: p.Month,
			Value: p.NetWorth,
			Label: core.FormatCompact(p.NetWorth),
		}
	}

	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, userID string) {
	if cached, ok := s.dashboardCache.Get(userID); ok {
		writeJSON(w, http.StatusOK, toDashboardJSON(cached))
		return
	}

	d, err := s.dashboards.Build(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build dashboard")
		return
	}
	s.dashboardCache.Set(userID, d)
	writeJSON(w, http.StatusOK, toDashboardJSON(d))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request, userID string) {
	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export accounts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not export")
		return
	}
	transactions, err := s.store.ListTransactions(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not export")
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	_, _ = w.Write([]byte(export.CSV(accounts, transactions, now)))
}
