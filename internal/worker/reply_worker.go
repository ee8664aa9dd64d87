// Package worker delivers queued chat replies to the messenger APIs.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"celengan/internal/amqp"
	"celengan/internal/chat"
	"celengan/internal/notify"
)

// ReplyWorker consumes ReplyMessages and hands each to the sender for its
// channel. Delivery failures bubble up so the AMQP consumer nacks and
// requeues; a messenger outage delays replies instead of losing them.
type ReplyWorker struct {
	telegram notify.Sender
	whatsapp notify.Sender
	timeout  time.Duration
}

func NewReplyWorker(telegram, whatsapp notify.Sender, timeout time.Duration) *ReplyWorker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReplyWorker{telegram: telegram, whatsapp: whatsapp, timeout: timeout}
}

// HandleReply delivers one queued reply.
func (w *ReplyWorker) HandleReply(ctx context.Context, msg *amqp.ReplyMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	sender, err := w.senderFor(chat.Channel(msg.Channel))
	if err != nil {
		// Undeliverable by construction: requeueing would loop forever.
		slog.ErrorContext(ctx, "Dropping undeliverable reply",
			"channel", msg.Channel, "error", err)
		return nil
	}

	if err := sender.Send(ctx, msg.Recipient, msg.Text); err != nil {
		return fmt.Errorf("deliver %s reply: %w", msg.Channel, err)
	}

	slog.InfoContext(ctx, "Delivered chat reply",
		"channel", msg.Channel,
		"queued_at", msg.Timestamp.Format(time.RFC3339))
	return nil
}

func (w *ReplyWorker) senderFor(ch chat.Channel) (notify.Sender, error) {
	switch ch {
	case chat.Telegram:
		if w.telegram == nil {
			return nil, fmt.Errorf("telegram sender not configured")
		}
		return w.telegram, nil
	case chat.WhatsApp:
		if w.whatsapp == nil {
			return nil, fmt.Errorf("whatsapp sender not configured")
		}
		return w.whatsapp, nil
	default:
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
}
