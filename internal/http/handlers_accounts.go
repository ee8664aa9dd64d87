package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"celengan/internal/core"
	"celengan/internal/store"
)

type accountJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Balance     int64  `json:"balance"`
	BalanceMode string `json:"balance_mode"`
	CreatedAt   string `json:"created_at"`
}

func toAccountJSON(a core.Account) accountJSON {
	return accountJSON{
		ID:          a.ID,
		Name:        a.Name,
		Type:        string(a.Type),
		Category:    string(a.Category),
		Balance:     a.Balance,
		BalanceMode: string(a.BalanceMode),
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, userID string) {
	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List accounts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load accounts")
		return
	}
	out := make([]accountJSON, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountJSON(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Category string `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Accounts open at zero; balances only move through the balance endpoint
	// so every change leaves a history entry.
	a, err := s.balances.CreateAccount(r.Context(), userID, sanitizeInput(req.Name),
		core.AccountType(req.Type), core.AccountCategory(req.Category))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	s.invalidateDashboard(userID)
	writeJSON(w, http.StatusCreated, toAccountJSON(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.balances.DeleteAccount(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete account")
		return
	}
	s.invalidateDashboard(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Balance int64 `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := s.balances.SetBalance(r.Context(), userID, r.PathValue("id"), req.Balance)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusUnprocessableEntity, "balance must not be negative")
			return
		}
		writeStoreError(w, r, err, "set balance")
		return
	}
	s.invalidateDashboard(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id":      snap.ID,
		"balance_at_time":  snap.BalanceAtTime,
		"previous_balance": snap.PreviousBalance,
		"recorded_at":      snap.RecordedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		BalanceMode string `json:"balance_mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.balances.SetBalanceMode(r.Context(), userID, r.PathValue("id"), core.BalanceMode(req.BalanceMode))
	if err != nil {
		if errors.Is(err, core.ErrInvalidBalanceMode) {
			writeError(w, http.StatusUnprocessableEntity, "balance_mode must be manual or auto")
			return
		}
		writeStoreError(w, r, err, "set balance mode")
		return
	}
	s.invalidateDashboard(userID)
	w.WriteHeader(http.StatusNoContent)
}

// writeValidationError maps domain validation failures to 422 and everything
// else to 500.
func writeValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidAccountType),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidBalanceMode),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	slog.ErrorContext(r.Context(), "Store operation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
