package model

import (
	"time"

	"github.com/lib/pq"
)

// Post status values. A scheduled post carries a future PublishedAt and is
// flipped to published by a sweep outside this service.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusScheduled = "scheduled"
)

// Post is the content a user publishes. Likes and LikedBy mirror the likes
// table for this post.
type Post struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	Title       string         `db:"title" json:"title"`
	Content     string         `db:"content" json:"content"`
	Status      string         `db:"status" json:"status"`
	PublishedAt *time.Time     `db:"published_at" json:"publishedAt,omitempty"`
	Likes       int            `db:"likes" json:"likes"`
	LikedBy     pq.StringArray `db:"liked_by" json:"likedBy"`
	Views       int            `db:"views" json:"views"`
	ViewedByIPs pq.StringArray `db:"viewed_by_ips" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}
