package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"celengan/internal/core"
)

type snapshotJSON struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	BalanceAtTime   int64  `json:"balance_at_time"`
	PreviousBalance int64  `json:"previous_balance"`
	RecordedAt      string `json:"recorded_at"`
}

func toSnapshotJSON(s core.Snapshot) snapshotJSON {
	return snapshotJSON{
		ID:              s.ID,
		AccountID:       s.AccountID,
		BalanceAtTime:   s.BalanceAtTime,
		PreviousBalance: s.PreviousBalance,
		RecordedAt:      s.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request, userID string) {
	snaps, err := s.store.ListSnapshots(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List snapshots failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	out := make([]snapshotJSON, len(snaps))
	for i, snap := range snaps {
		out[i] = toSnapshotJSON(snap)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpdateSnapshot edits a history entry as-is. The chain is not
// revalidated and the account's live balance stays untouched.
func (s *Server) handleUpdateSnapshot(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		BalanceAtTime   int64 `json:"balance_at_time"`
		PreviousBalance int64 `json:"previous_balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.balances.UpdateSnapshot(r.Context(), userID, r.PathValue("id"), req.BalanceAtTime, req.PreviousBalance)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusUnprocessableEntity, "balances must not be negative")
			return
		}
		writeStoreError(w, r, err, "update snapshot")
		return
	}
	s.invalidateDashboard(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.balances.DeleteSnapshot(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete snapshot")
		return
	}
	s.invalidateDashboard(userID)
	w.WriteHeader(http.StatusNoContent)
}
