package http

import (
	"errors"
	"log/slog"
	"net/http"

	"celengan/internal/core"
	"celengan/internal/store"
)

type transactionJSON struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id,omitempty"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Date:        t.Date.String(),
		Type:        string(t.Type),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	txs, err := s.store.ListTransactions(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load transactions")
		return
	}
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = toTransactionJSON(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		AccountID   string `json:"account_id"`
		Description string `json:"description"`
		Amount      int64  `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"`
		Type        string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var date core.Date
	if req.Date != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	t, err := s.balances.CreateTransaction(r.Context(), core.Transaction{
		UserID:      userID,
		AccountID:   req.AccountID,
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Date:        date,
		Type:        core.TransactionType(req.Type),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "linked account not found")
			return
		}
		writeValidationError(w, err)
		return
	}
	s.invalidateDashboard(userID)
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.balances.DeleteTransaction(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete transaction")
		return
	}
	s.invalidateDashboard(userID)
	w.WriteHeader(http.StatusNoContent)
}
