package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialcore/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `
	c.id, c.post_id, c.user_id, c.parent_comment_id, c.content,
	GREATEST(c.likes, 0) AS likes, c.liked_by, c.is_edited, c.edited_at,
	c.created_at, c.updated_at`

const commentAuthorColumns = `
	u.id AS author_id, u.name AS author_name, u.profile_picture AS author_profile_picture`

// commentRow scans a comment joined with its author.
type commentRow struct {
	model.Comment
	AuthorID             string  `db:"author_id"`
	AuthorName           string  `db:"author_name"`
	AuthorProfilePicture *string `db:"author_profile_picture"`
}

func (row commentRow) view() model.CommentView {
	return model.CommentView{
		Comment: row.Comment,
		Author: &model.UserSummary{
			ID:             row.AuthorID,
			Name:           row.AuthorName,
			ProfilePicture: row.AuthorProfilePicture,
		},
	}
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, parent_comment_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING likes, liked_by, is_edited, edited_at, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.ID, c.PostID, c.UserID, c.ParentCommentID, c.Content).
		Scan(&c.Likes, &c.LikedBy, &c.IsEdited, &c.EditedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c WHERE c.id = $1`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Update is a single conditional statement: the ownership check and the
// edit cannot be separated by a concurrent change of author.
func (r *commentRepository) Update(ctx context.Context, id, userID, content string, editedAt time.Time) (*model.Comment, error) {
	query := `
		UPDATE comments c
		SET content = $1, is_edited = TRUE, edited_at = $2, updated_at = $2
		WHERE c.id = $3 AND c.user_id = $4
		RETURNING ` + commentColumns
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, content, editedAt, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, id); err != nil {
			return nil, fmt.Errorf("check comment exists: %w", err)
		}
		if exists {
			return nil, model.ErrNotCommentOwner
		}
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) DeleteReplies(ctx context.Context, parentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE parent_comment_id = $1`, parentID)
	if err != nil {
		return 0, fmt.Errorf("delete replies: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListTopLevel returns one page of a post's top-level comments, newest first.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID string, page model.Page) ([]model.CommentView, error) {
	query := `
		SELECT ` + commentColumns + `, ` + commentAuthorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1 AND c.parent_comment_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, postID, page.Limit, page.Offset()); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return views(rows), nil
}

func (r *commentRepository) CountTopLevel(ctx context.Context, postID string) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1 AND parent_comment_id IS NULL`, postID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return total, nil
}

// ListReplies fetches the replies of every parent in one query.
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []string) ([]model.CommentView, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + commentColumns + `, ` + commentAuthorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.parent_comment_id = ANY($1::uuid[])
		ORDER BY c.created_at ASC, c.id ASC
	`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return views(rows), nil
}

func views(rows []commentRow) []model.CommentView {
	out := make([]model.CommentView, len(rows))
	for i, row := range rows {
		out[i] = row.view()
	}
	return out
}
