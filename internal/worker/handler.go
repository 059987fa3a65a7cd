package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"socialcore/internal/mail"
	"socialcore/internal/queue"
)

// Handler delivers events read from the mail stream.
type Handler struct {
	mailer mail.Mailer
	log    *zap.Logger
}

// NewHandler creates a handler that sends queued emails through mailer.
func NewHandler(mailer mail.Mailer, log *zap.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		log:    log.With(zap.String("component", "worker")),
	}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.MailEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventEmailRequested:
		err = h.handleEmailRequested(ctx, event)
	default:
		h.log.Warn("unknown event type", zap.String("type", event.Type))
		return fmt.Errorf("unknown event type: %q", event.Type)
	}

	if err != nil {
		h.log.Error("handle event failed",
			zap.String("type", event.Type),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return err
	}

	h.log.Debug("handle event ok", zap.String("type", event.Type), zap.Duration("duration", time.Since(startTime)))
	return nil
}

func (h *Handler) handleEmailRequested(ctx context.Context, event queue.MailEvent) error {
	if event.To == "" {
		return fmt.Errorf("email event has no recipient")
	}

	err := h.mailer.Send(ctx, mail.Message{
		To:      event.To,
		Subject: event.Subject,
		HTML:    event.HTML,
		Tag:     event.NotificationType,
	})
	if err != nil {
		return fmt.Errorf("send %s email: %w", event.NotificationType, err)
	}
	return nil
}
