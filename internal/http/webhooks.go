package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"celengan/internal/chat"
	"celengan/internal/store"
)

// telegramUpdate is the slice of the Bot API update we care about.
type telegramUpdate struct {
	Message *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From *struct {
			Username string `json:"username"`
		} `json:"from"`
		Text string `json:"text"`
	} `json:"message"`
}

// handleTelegramWebhook processes one Telegram update. Telegram retries on
// non-200 responses, so every handled update answers 200 even when the user
// is unknown or the message is unusable.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	var update telegramUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	if update.Message == nil || update.Message.Text == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	ctx := r.Context()
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
	text := update.Message.Text

	username := ""
	if update.Message.From != nil {
		username = update.Message.From.Username
	}
	if username == "" {
		s.sendReply(ctx, chat.Telegram, chatID, chat.SetupInstructions(chat.Telegram, chat.GuessLanguage(text)))
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	userID, err := s.store.FindUserByTelegram(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.ErrorContext(ctx, "Telegram user lookup failed", "error", err)
		}
		s.sendReply(ctx, chat.Telegram, chatID, chat.SetupInstructions(chat.Telegram, chat.GuessLanguage(text)))
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	reply, err := s.chat.HandleMessage(ctx, userID, text)
	if err != nil {
		slog.ErrorContext(ctx, "Telegram message handling failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	// Chat messages can record transactions or set balances, so the cached
	// dashboard may now be stale.
	s.invalidateDashboard(userID)
	s.sendReply(ctx, chat.Telegram, chatID, reply)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleWhatsAppVerify answers Meta's webhook verification handshake.
func (s *Server) handleWhatsAppVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == s.metaVerifyToken && s.metaVerifyToken != "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// whatsappPayload is Meta's nested webhook envelope.
type whatsappPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"` // e.g. "628123456789", no + prefix
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	var payload whatsappPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	// Status updates and other non-message events carry no messages.
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 ||
		len(payload.Entry[0].Changes[0].Value.Messages) == 0 {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	msg := payload.Entry[0].Changes[0].Value.Messages[0]
	if msg.Type != "text" || msg.Text.Body == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	ctx := r.Context()
	text := msg.Text.Body
	// Settings store phone numbers in E.164 with the + prefix.
	phone := "+" + msg.From

	userID, err := s.store.FindUserByWhatsApp(ctx, phone)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.ErrorContext(ctx, "WhatsApp user lookup failed", "error", err)
		}
		s.sendReply(ctx, chat.WhatsApp, msg.From, chat.SetupInstructions(chat.WhatsApp, chat.GuessLanguage(text)))
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	reply, err := s.chat.HandleMessage(ctx, userID, text)
	if err != nil {
		slog.ErrorContext(ctx, "WhatsApp message handling failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	// Same as the Telegram path: the message may have mutated balances.
	s.invalidateDashboard(userID)
	s.sendReply(ctx, chat.WhatsApp, msg.From, reply)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
