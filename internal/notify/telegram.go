package notify

import (
	"context"
	"fmt"
	"net/http"
)

// TelegramSender posts replies through the Telegram Bot API sendMessage call.
// Recipient is the numeric chat id as a string.
type TelegramSender struct {
	token  string
	client *http.Client
}

func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{token: token, client: defaultHTTPClient}
}

func (s *TelegramSender) Send(ctx context.Context, recipient, text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.token)
	payload := map[string]any{
		"chat_id":    recipient,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if err := postJSON(ctx, s.client, url, nil, payload); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}
