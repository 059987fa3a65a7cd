package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialcore/internal/model"
	"socialcore/internal/relation"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Exists(ctx context.Context, key relation.Key) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, key.ActorID, key.TargetID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

func (r *followRepository) Insert(ctx context.Context, key relation.Key) error {
	query := `
		INSERT INTO follows (id, follower_id, following_id)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, model.NewID(), key.ActorID, key.TargetID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrRelationExists
		case isCheckViolation(err):
			return model.ErrCannotFollowSelf
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, key relation.Key) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`
	result, err := r.db.ExecContext(ctx, query, key.ActorID, key.TargetID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
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

// GetFollowers returns users following userID, most recent follow first.
func (r *followRepository) GetFollowers(ctx context.Context, userID string, page model.Page) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.name, u.profile_picture
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE following_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

// GetFollowing returns users userID follows, most recent follow first.
func (r *followRepository) GetFollowing(ctx context.Context, userID string, page model.Page) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.name, u.profile_picture
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

// CheckFollows reports, for each of followingIDs, whether followerID follows it.
func (r *followRepository) CheckFollows(ctx context.Context, followerID string, followingIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(followingIDs))
	if len(followingIDs) == 0 {
		return result, nil
	}

	query := `SELECT following_id FROM follows WHERE follower_id = $1 AND following_id = ANY($2::uuid[])`
	var followed []string
	if err := r.db.SelectContext(ctx, &followed, query, followerID, pq.Array(followingIDs)); err != nil {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	for _, id := range followingIDs {
		result[id] = false
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}
