package mail

import (
	"context"
	"fmt"

	"socialcore/internal/queue"
)

// QueueMailer hands emails to the mail stream instead of sending them
// inline, keeping SES latency out of the request path.
type QueueMailer struct {
	publisher queue.Publisher
}

func NewQueueMailer(publisher queue.Publisher) *QueueMailer {
	return &QueueMailer{publisher: publisher}
}

func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	event := queue.NewEmailRequestedEvent(msg.To, msg.Subject, msg.HTML, msg.Tag)
	if _, err := m.publisher.Publish(ctx, queue.StreamMail, event); err != nil {
		return fmt.Errorf("queue email: %w", err)
	}
	return nil
}
