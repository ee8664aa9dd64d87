package notify

import (
	"context"
	"fmt"
	"net/http"
)

// WhatsAppSender posts replies through the Meta Graph API messages endpoint.
// Recipient is the sender's phone number without the "+" prefix, exactly as
// Meta delivers it in the webhook payload.
type WhatsAppSender struct {
	token         string
	phoneNumberID string
	client        *http.Client
}

func NewWhatsAppSender(token, phoneNumberID string) *WhatsAppSender {
	return &WhatsAppSender{token: token, phoneNumberID: phoneNumberID, client: defaultHTTPClient}
}

func (s *WhatsAppSender) Send(ctx context.Context, recipient, text string) error {
	url := fmt.Sprintf("https://graph.facebook.com/v19.0/%s/messages", s.phoneNumberID)
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                recipient,
		"type":              "text",
		"text":              map[string]string{"body": text},
	}
	headers := map[string]string{"Authorization": "Bearer " + s.token}
	if err := postJSON(ctx, s.client, url, headers, payload); err != nil {
		return fmt.Errorf("whatsapp messages: %w", err)
	}
	return nil
}
