package service

import (
	"context"

	"go.uber.org/zap"

	"socialcore/internal/model"
	"socialcore/internal/repository"
)

// NotificationService is the recipient's view of notifications. Records are
// only ever created by the notify dispatcher.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	log       *zap.Logger
}

func NewNotificationService(notifRepo repository.NotificationRepository, log *zap.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		log:       log.With(zap.String("component", "notification_service")),
	}
}

// List returns a page of the user's notifications, newest first, with the
// total unread count for badge display.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*model.NotificationListResponse, error) {
	userID, err := model.ParseID(userID)
	if err != nil {
		return nil, err
	}
	p := model.NewPage(page, limit, defaultNotificationsLimit)

	notifications, total, err := fetchPage(ctx,
		func(ctx context.Context) ([]model.Notification, error) {
			return s.notifRepo.List(ctx, userID, unreadOnly, p)
		},
		func(ctx context.Context) (int, error) { return s.notifRepo.Count(ctx, userID, unreadOnly) },
	)
	if err != nil {
		return nil, err
	}

	unread := total
	if !unreadOnly {
		unread, err = s.notifRepo.Count(ctx, userID, true)
		if err != nil {
			return nil, model.Dependency("count unread notifications", err)
		}
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Pagination:    model.NewPagination(p, total),
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	ids, err := model.ParseIDs(notificationID, userID)
	if err != nil {
		return nil, err
	}

	n, err := s.notifRepo.MarkAsRead(ctx, ids[0], ids[1])
	if err != nil {
		return nil, model.Dependency("mark notification read", err)
	}
	return n, nil
}

// MarkAllAsRead flags every unread notification of the user and returns how
// many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	userID, err := model.ParseID(userID)
	if err != nil {
		return 0, err
	}

	n, err := s.notifRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, model.Dependency("mark all notifications read", err)
	}
	s.log.Info("notifications marked read", zap.String("user", userID), zap.Int64("count", n))
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, userID string) error {
	ids, err := model.ParseIDs(notificationID, userID)
	if err != nil {
		return err
	}

	if err := s.notifRepo.Delete(ctx, ids[0], ids[1]); err != nil {
		return model.Dependency("delete notification", err)
	}
	return nil
}
