package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeComment = "comment"
	NotificationTypeLike    = "like"
	NotificationTypeFollow  = "follow"
	NotificationTypeReply   = "reply"
)

// Notification is created only as a side effect of an interaction.
type Notification struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"userId"`                // Recipient
	Type             string    `db:"type" json:"type"`                     // comment, like, follow, reply
	RelatedUserID    string    `db:"related_user_id" json:"relatedUserId"` // Who triggered it
	RelatedPostID    *string   `db:"related_post_id" json:"relatedPostId,omitempty"`
	RelatedCommentID *string   `db:"related_comment_id" json:"relatedCommentId,omitempty"`
	Read             bool      `db:"read" json:"read"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`

	// Joined fields for display
	RelatedUser    *UserSummary `db:"-" json:"relatedUser,omitempty"`
	RelatedPost    *PostRef     `db:"-" json:"relatedPost,omitempty"`
	RelatedComment *CommentRef  `db:"-" json:"relatedComment,omitempty"`
}

type PostRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type CommentRef struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// NotificationListResponse is a page of notifications plus the unread badge count.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
	Pagination    Pagination     `json:"pagination"`
}
