package amqp

import (
	"encoding/json"
	"time"
)

// ReplyMessage is one outbound chat reply waiting for delivery. The webhook
// handlers publish these so a slow or failing messenger API never blocks the
// incoming request.
type ReplyMessage struct {
	Channel   string    `json:"channel"` // "telegram" or "whatsapp"
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReplyMessage(channel, recipient, text string) *ReplyMessage {
	return &ReplyMessage{
		Channel:   channel,
		Recipient: recipient,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func (m *ReplyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReplyMessageFromJSON(data []byte) (*ReplyMessage, error) {
	var msg ReplyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
