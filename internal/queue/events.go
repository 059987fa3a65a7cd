package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the mail stream
const (
	EventEmailRequested = "email_requested"
)

// Stream names
const (
	StreamMail = "stream:mail"
)

// Consumer group name for mail workers
const (
	ConsumerGroupMail = "mail_workers"
)

// MailEvent is a rendered email waiting to be delivered by a worker.
type MailEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when the email was queued

	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`

	// NotificationType is the notification that produced the email, for logs.
	NotificationType string `json:"notification_type,omitempty"`
}

// NewEmailRequestedEvent creates an event carrying one rendered email.
func NewEmailRequestedEvent(to, subject, html, notificationType string) MailEvent {
	return MailEvent{
		Type:             EventEmailRequested,
		Timestamp:        time.Now().Unix(),
		To:               to,
		Subject:          subject,
		HTML:             html,
		NotificationType: notificationType,
	}
}

// ToMap converts the event to XADD field-value pairs. The whole event is
// stored as JSON under "data".
func (e MailEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseMailEvent parses a MailEvent from Redis stream message values.
func ParseMailEvent(values map[string]interface{}) (MailEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return MailEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event MailEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return MailEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
