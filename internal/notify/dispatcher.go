// Package notify records notifications for interactions and sends the
// matching emails.
//
// Recording is synchronous and its failure is returned to the caller. The
// email is a single best-effort attempt whose failure never reaches the
// caller.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"socialcore/internal/mail"
	"socialcore/internal/model"
)

// Store persists notification records.
type Store interface {
	Create(ctx context.Context, n *model.Notification) error
}

// UserLookup loads the users named in an email.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Notice describes one interaction worth telling RecipientID about.
type Notice struct {
	Type        string
	RecipientID string
	ActorID     string
	PostID      *string
	CommentID   *string

	// Email context. PostTitle names the post, Excerpt is the new comment or
	// reply text, Quoted is the comment being replied to or liked.
	PostTitle string
	Excerpt   string
	Quoted    string
}

type Dispatcher struct {
	store    Store
	users    UserLookup
	mailer   mail.Mailer
	renderer *Renderer
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil mailer disables email.
func NewDispatcher(store Store, users UserLookup, mailer mail.Mailer, renderer *Renderer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		users:    users,
		mailer:   mailer,
		renderer: renderer,
		log:      log.With(zap.String("component", "notify")),
	}
}

// Notify records the notice and attempts its email. Self-notifications are
// skipped without touching storage.
func (d *Dispatcher) Notify(ctx context.Context, n Notice) error {
	if n.RecipientID == n.ActorID {
		d.log.Debug("skipping self notification", zap.String("type", n.Type), zap.String("user", n.ActorID))
		return nil
	}
	if !validType(n.Type) {
		return fmt.Errorf("unknown notification type %q", n.Type)
	}

	record := &model.Notification{
		ID:               model.NewID(),
		UserID:           n.RecipientID,
		Type:             n.Type,
		RelatedUserID:    n.ActorID,
		RelatedPostID:    n.PostID,
		RelatedCommentID: n.CommentID,
	}
	if err := d.store.Create(ctx, record); err != nil {
		d.log.Error("create notification failed",
			zap.String("type", n.Type),
			zap.String("recipient", n.RecipientID),
			zap.Error(err))
		return model.Dependency("create notification", err)
	}

	d.log.Info("notification created",
		zap.String("id", record.ID),
		zap.String("type", n.Type),
		zap.String("recipient", n.RecipientID),
		zap.String("actor", n.ActorID))

	if d.mailer != nil && d.renderer != nil {
		BestEffort(ctx, d.log, "send "+n.Type+" email", func(ctx context.Context) error {
			return d.sendEmail(ctx, n)
		})
	}

	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, n Notice) error {
	recipient, err := d.users.GetByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if recipient.Email == "" {
		d.log.Debug("recipient has no email address", zap.String("recipient", n.RecipientID))
		return nil
	}

	actor, err := d.users.GetByID(ctx, n.ActorID)
	if err != nil {
		return fmt.Errorf("load actor: %w", err)
	}

	subject, body, err := d.renderer.Render(n, recipient, actor)
	if err != nil {
		return err
	}

	return d.mailer.Send(ctx, mail.Message{
		To:      recipient.Email,
		Subject: subject,
		HTML:    body,
		Tag:     n.Type,
	})
}

func validType(t string) bool {
	switch t {
	case model.NotificationTypeComment, model.NotificationTypeReply,
		model.NotificationTypeLike, model.NotificationTypeFollow:
		return true
	}
	return false
}
