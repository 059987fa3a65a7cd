package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialcore/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, related_user_id, related_post_id, related_comment_id, read, created_at`

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, related_user_id, related_post_id, related_comment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING read, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		n.ID, n.UserID, n.Type, n.RelatedUserID, n.RelatedPostID, n.RelatedCommentID,
	).Scan(&n.Read, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// List returns a page of a user's notifications, newest first, with the
// acting user, post title and comment text attached when they still exist.
func (r *notificationRepository) List(ctx context.Context, userID string, unreadOnly bool, page model.Page) ([]model.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.type, n.related_user_id, n.related_post_id,
		       n.related_comment_id, n.read, n.created_at,
		       u.name AS actor_name, u.profile_picture AS actor_profile_picture,
		       p.title AS post_title, c.content AS comment_content
		FROM notifications n
		LEFT JOIN users u ON u.id = n.related_user_id
		LEFT JOIN posts p ON p.id = n.related_post_id
		LEFT JOIN comments c ON c.id = n.related_comment_id
		WHERE n.user_id = $1 AND ($2 = FALSE OR n.read = FALSE)
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $3 OFFSET $4
	`
	type notificationRow struct {
		model.Notification
		ActorName           *string `db:"actor_name"`
		ActorProfilePicture *string `db:"actor_profile_picture"`
		PostTitle           *string `db:"post_title"`
		CommentContent      *string `db:"comment_content"`
	}

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, unreadOnly, page.Limit, page.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		notifications[i] = row.Notification
		if row.ActorName != nil {
			notifications[i].RelatedUser = &model.UserSummary{
				ID:             row.RelatedUserID,
				Name:           *row.ActorName,
				ProfilePicture: row.ActorProfilePicture,
			}
		}
		if row.RelatedPostID != nil && row.PostTitle != nil {
			notifications[i].RelatedPost = &model.PostRef{ID: *row.RelatedPostID, Title: *row.PostTitle}
		}
		if row.RelatedCommentID != nil && row.CommentContent != nil {
			notifications[i].RelatedComment = &model.CommentRef{ID: *row.RelatedCommentID, Content: *row.CommentContent}
		}
	}
	return notifications, nil
}

func (r *notificationRepository) Count(ctx context.Context, userID string, unreadOnly bool) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND ($2 = FALSE OR read = FALSE)`,
		userID, unreadOnly)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	query := `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns
	var n model.Notification
	err := r.db.GetContext(ctx, &n, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}
