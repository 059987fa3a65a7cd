package model

import (
	"time"
)

type Bookmark struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	PostID    string    `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Joined field for display
	Post *Post `db:"-" json:"post,omitempty"`
}

type BookmarkListResponse struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	Pagination Pagination `json:"pagination"`
}
