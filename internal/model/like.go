package model

import (
	"time"
)

// Like target types
const (
	TargetPost    = "Post"
	TargetComment = "Comment"
)

// ParseTargetType accepts only the two likeable entity types.
func ParseTargetType(raw string) (string, error) {
	switch raw {
	case TargetPost, TargetComment:
		return raw, nil
	default:
		return "", ErrInvalidTargetType
	}
}

// Like is the source of truth for "user liked target". The likes and
// liked_by columns on posts and comments are derived from these rows.
type Like struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	TargetType string    `db:"target_type" json:"targetType"`
	TargetID   string    `db:"target_id" json:"targetId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`

	// Joined field for display. Nil when the target no longer exists.
	Target *LikeTarget `db:"-" json:"target,omitempty"`
}

// LikeTarget summarizes the liked post or comment. Comments have no title.
type LikeTarget struct {
	ID      string  `json:"id"`
	Title   *string `json:"title,omitempty"`
	Content string  `json:"content"`
}

// ToggleLikeRequest is the request body for toggling a like.
type ToggleLikeRequest struct {
	TargetType string `json:"targetType" validate:"required,oneof=Post Comment"`
	TargetID   string `json:"targetId" validate:"required"`
}

// LikeListResponse is a page of likes made by one user.
type LikeListResponse struct {
	Likes      []Like     `json:"likes"`
	Pagination Pagination `json:"pagination"`
}
