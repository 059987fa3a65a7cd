package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialcore/internal/model"
	"socialcore/internal/relation"
)

type bookmarkRepository struct {
	db *sqlx.DB
}

func NewBookmarkRepository(db *sqlx.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Exists(ctx context.Context, key relation.Key) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM bookmarks WHERE user_id = $1 AND post_id = $2)`, key.ActorID, key.TargetID)
	if err != nil {
		return false, fmt.Errorf("check bookmark exists: %w", err)
	}
	return exists, nil
}

func (r *bookmarkRepository) Insert(ctx context.Context, key relation.Key) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, post_id) VALUES ($1, $2, $3)`,
		model.NewID(), key.ActorID, key.TargetID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrRelationExists
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, key relation.Key) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND post_id = $2`, key.ActorID, key.TargetID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
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

// ListByUser returns a page of bookmarks with the bookmarked post attached.
func (r *bookmarkRepository) ListByUser(ctx context.Context, userID string, page model.Page) ([]model.Bookmark, error) {
	query := `
		SELECT b.id, b.user_id, b.post_id, b.created_at,
		       p.id AS "post.id", p.user_id AS "post.user_id", p.title AS "post.title",
		       p.content AS "post.content", p.status AS "post.status",
		       p.published_at AS "post.published_at",
		       GREATEST(p.likes, 0) AS "post.likes", p.liked_by AS "post.liked_by",
		       p.views AS "post.views", p.viewed_by_ips AS "post.viewed_by_ips",
		       p.created_at AS "post.created_at", p.updated_at AS "post.updated_at"
		FROM bookmarks b
		JOIN posts p ON p.id = b.post_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`
	type bookmarkRow struct {
		model.Bookmark
		Post model.Post `db:"post"`
	}

	var rows []bookmarkRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	bookmarks := make([]model.Bookmark, len(rows))
	for i := range rows {
		bookmarks[i] = rows[i].Bookmark
		post := rows[i].Post
		bookmarks[i].Post = &post
	}
	return bookmarks, nil
}

func (r *bookmarkRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return count, nil
}
