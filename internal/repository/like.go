package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialcore/internal/model"
	"socialcore/internal/relation"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, key relation.Key) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND target_type = $2 AND target_id = $3)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, key.ActorID, key.TargetType, key.TargetID)
	if err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

// Insert relies on UNIQUE (user_id, target_type, target_id) to reject a
// second like from the same user.
func (r *likeRepository) Insert(ctx context.Context, key relation.Key) error {
	query := `
		INSERT INTO likes (id, user_id, target_type, target_id)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, model.NewID(), key.ActorID, key.TargetType, key.TargetID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrRelationExists
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, key relation.Key) error {
	query := `DELETE FROM likes WHERE user_id = $1 AND target_type = $2 AND target_id = $3`
	result, err := r.db.ExecContext(ctx, query, key.ActorID, key.TargetType, key.TargetID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrRelationAbsent
	}
	return nil
}

// CountByTarget counts like records, not the cached counter.
func (r *likeRepository) CountByTarget(ctx context.Context, targetType, targetID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM likes WHERE target_type = $1 AND target_id = $2`, targetType, targetID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// ListByUser returns a page of the user's likes with the liked post or
// comment attached when it still exists.
func (r *likeRepository) ListByUser(ctx context.Context, userID, targetType string, page model.Page) ([]model.Like, error) {
	query := `
		SELECT l.id, l.user_id, l.target_type, l.target_id, l.created_at,
		       COALESCE(p.id, c.id) AS target_ref,
		       p.title AS target_title,
		       COALESCE(p.content, c.content) AS target_content
		FROM likes l
		LEFT JOIN posts p ON l.target_type = 'Post' AND p.id = l.target_id
		LEFT JOIN comments c ON l.target_type = 'Comment' AND c.id = l.target_id
		WHERE l.user_id = $1 AND ($2::text = '' OR l.target_type = $2::text)
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $3 OFFSET $4
	`
	type likeRow struct {
		model.Like
		TargetRef     *string `db:"target_ref"`
		TargetTitle   *string `db:"target_title"`
		TargetContent *string `db:"target_content"`
	}

	var rows []likeRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, targetType, page.Limit, page.Offset()); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	likes := make([]model.Like, len(rows))
	for i, row := range rows {
		likes[i] = row.Like
		if row.TargetRef != nil && row.TargetContent != nil {
			likes[i].Target = &model.LikeTarget{
				ID:      *row.TargetRef,
				Title:   row.TargetTitle,
				Content: *row.TargetContent,
			}
		}
	}
	return likes, nil
}

func (r *likeRepository) CountByUser(ctx context.Context, userID, targetType string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM likes WHERE user_id = $1 AND ($2::text = '' OR target_type = $2::text)`,
		userID, targetType)
	if err != nil {
		return 0, fmt.Errorf("count user likes: %w", err)
	}
	return count, nil
}
