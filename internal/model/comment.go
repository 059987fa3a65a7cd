package model

import (
	"time"

	"github.com/lib/pq"
)

// MaxCommentLength is the longest comment body accepted, in characters.
const MaxCommentLength = 1000

// Comment is a flat record. ParentCommentID is nil for top-level comments
// and points at a top-level comment for replies; threads are never deeper.
type Comment struct {
	ID              string         `db:"id" json:"id"`
	PostID          string         `db:"post_id" json:"postId"`
	UserID          string         `db:"user_id" json:"userId"`
	ParentCommentID *string        `db:"parent_comment_id" json:"parentCommentId"`
	Content         string         `db:"content" json:"content"`
	Likes           int            `db:"likes" json:"likes"`
	LikedBy         pq.StringArray `db:"liked_by" json:"likedBy"`
	IsEdited        bool           `db:"is_edited" json:"isEdited"`
	EditedAt        *time.Time     `db:"edited_at" json:"editedAt,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// CommentView is a comment as shown to a particular viewer.
type CommentView struct {
	Comment
	Author  *UserSummary `json:"author,omitempty"`
	IsOwner bool         `json:"isOwner"`
}

// ThreadComment is a top-level comment with all of its direct replies,
// oldest first.
type ThreadComment struct {
	CommentView
	Replies []CommentView `json:"replies"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	PostID          string  `json:"postId" validate:"required"`
	Content         string  `json:"content" validate:"required,max=1000"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}

// UpdateCommentRequest is the request body for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CommentListResponse is a page of threads for one post.
type CommentListResponse struct {
	Comments   []ThreadComment `json:"comments"`
	Pagination Pagination      `json:"pagination"`
}
