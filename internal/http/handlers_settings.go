package http

import (
	"log/slog"
	"net/http"

	"celengan/internal/core"
)

type settingsJSON struct {
	MonthlyIncome            int64  `json:"monthly_income"`
	GoalTarget               int64  `json:"goal_target"`
	GoalTargetDate           string `json:"goal_target_date"`
	TelegramUsername         string `json:"telegram_username,omitempty"`
	TelegramDefaultAccountID string `json:"telegram_default_account_id,omitempty"`
	WhatsAppPhone            string `json:"whatsapp_phone,omitempty"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request, userID string) {
	settings, err := s.dashboards.Settings(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Get settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsJSON{
		MonthlyIncome:            settings.MonthlyIncome,
		GoalTarget:               settings.GoalTarget,
		GoalTargetDate:           settings.GoalTargetDate.String(),
		TelegramUsername:         settings.TelegramUsername,
		TelegramDefaultAccountID: settings.TelegramDefaultAccountID,
		WhatsAppPhone:            settings.WhatsAppPhone,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, userID string) {
	var req settingsJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var goalDate core.Date
	if req.GoalTargetDate != "" {
		parsed, err := core.ParseDate(req.GoalTargetDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "goal_target_date must be YYYY-MM-DD")
			return
		}
		goalDate = parsed
	}

	err := s.dashboards.UpdateSettings(r.Context(), core.Settings{
		UserID:                   userID,
		MonthlyIncome:            req.MonthlyIncome,
		GoalTarget:               req.GoalTarget,
		GoalTargetDate:           goalDate,
		TelegramUsername:         sanitizeInput(req.TelegramUsername),
		TelegramDefaultAccountID: req.TelegramDefaultAccountID,
		WhatsAppPhone:            sanitizeInput(req.WhatsAppPhone),
	})
	if err != nil {
		writeValidationError(w, err)
		return
	}
	s.invalidateDashboard(userID)
	w.WriteHeader(http.StatusNoContent)
}
