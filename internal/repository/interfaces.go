package repository

import (
	"context"
	"time"

	"socialcore/internal/counter"
	"socialcore/internal/model"
	"socialcore/internal/relation"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// Update edits the comment only if userID wrote it. It returns
	// ErrNotCommentOwner or ErrCommentNotFound when no row matched.
	Update(ctx context.Context, id, userID, content string, editedAt time.Time) (*model.Comment, error)
	// DeleteReplies removes every comment whose parent is parentID.
	DeleteReplies(ctx context.Context, parentID string) (int64, error)
	// Delete removes one comment and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	ListTopLevel(ctx context.Context, postID string, page model.Page) ([]model.CommentView, error)
	CountTopLevel(ctx context.Context, postID string) (int, error)
	// ListReplies returns the replies to all of parentIDs, oldest first.
	ListReplies(ctx context.Context, parentIDs []string) ([]model.CommentView, error)
}

// LikeRepository stores likes. As a relation.Store its keys carry the
// target type (Post or Comment) and target id.
type LikeRepository interface {
	relation.Store
	CountByTarget(ctx context.Context, targetType, targetID string) (int, error)
	// ListByUser and CountByUser take an empty targetType to mean both kinds.
	ListByUser(ctx context.Context, userID, targetType string, page model.Page) ([]model.Like, error)
	CountByUser(ctx context.Context, userID, targetType string) (int, error)
}

// FollowRepository stores follows. Keys are (follower, User, following).
type FollowRepository interface {
	relation.Store
	GetFollowers(ctx context.Context, userID string, page model.Page) ([]model.UserSummary, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	GetFollowing(ctx context.Context, userID string, page model.Page) ([]model.UserSummary, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
	CheckFollows(ctx context.Context, followerID string, followingIDs []string) (map[string]bool, error)
}

// BookmarkRepository stores bookmarks. Keys are (user, Post, post).
type BookmarkRepository interface {
	relation.Store
	ListByUser(ctx context.Context, userID string, page model.Page) ([]model.Bookmark, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, page model.Page) ([]model.Notification, error)
	Count(ctx context.Context, userID string, unreadOnly bool) (int, error)
	// MarkAsRead flags one of userID's notifications as read and returns it.
	MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

// CounterRepository applies counter adjustments with single-row updates.
type CounterRepository interface {
	counter.Store
}
