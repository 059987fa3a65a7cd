// Package counter keeps the denormalized like and follow counts in step with
// relation records.
//
// Every adjustment is a single-row atomic update. Counters are never clamped
// here; readers clamp at zero so a drift stays visible instead of masked.
package counter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"socialcore/internal/model"
)

type Entity string

const (
	EntityPost    Entity = model.TargetPost
	EntityComment Entity = model.TargetComment
	EntityUser    Entity = "User"
)

type Field string

const (
	FieldLikes          Field = "likes"
	FieldFollowersCount Field = "followersCount"
	FieldFollowingCount Field = "followingCount"
)

// Adjustment moves one counter by Delta. For FieldLikes, Member is added to
// the entity's likedBy set when Delta is positive and removed otherwise, in
// the same statement as the increment.
type Adjustment struct {
	Entity   Entity
	EntityID string
	Field    Field
	Delta    int
	Member   string
}

// Validate rejects field/entity combinations that have no column.
func (a Adjustment) Validate() error {
	if a.Delta == 0 {
		return fmt.Errorf("adjustment of %s.%s has zero delta", a.Entity, a.Field)
	}
	switch a.Field {
	case FieldLikes:
		if a.Entity != EntityPost && a.Entity != EntityComment {
			return fmt.Errorf("%s has no likes counter", a.Entity)
		}
		if a.Member == "" {
			return fmt.Errorf("likes adjustment on %s %s has no member", a.Entity, a.EntityID)
		}
	case FieldFollowersCount, FieldFollowingCount:
		if a.Entity != EntityUser {
			return fmt.Errorf("%s has no %s counter", a.Entity, a.Field)
		}
	default:
		return fmt.Errorf("unknown counter field %q", a.Field)
	}
	return nil
}

// RebuildStats counts the rows whose counters a rebuild rewrote.
type RebuildStats struct {
	Posts    int64
	Comments int64
	Users    int64
}

// Store applies adjustments. Increment reports false when the entity row no
// longer exists.
type Store interface {
	Increment(ctx context.Context, adj Adjustment) (bool, error)
	Rebuild(ctx context.Context) (RebuildStats, error)
}

type Reconciler struct {
	store Store
	log   *zap.Logger
}

func NewReconciler(store Store, log *zap.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   log.With(zap.String("component", "counter")),
	}
}

// Adjust applies one adjustment. A target deleted in the meantime is logged
// and skipped.
func (r *Reconciler) Adjust(ctx context.Context, adj Adjustment) error {
	if err := adj.Validate(); err != nil {
		return err
	}

	found, err := r.store.Increment(ctx, adj)
	if err != nil {
		return fmt.Errorf("adjust %s.%s: %w", adj.Entity, adj.Field, err)
	}
	if !found {
		r.log.Warn("counter target missing, adjustment dropped",
			zap.String("entity", string(adj.Entity)),
			zap.String("id", adj.EntityID),
			zap.String("field", string(adj.Field)),
			zap.Int("delta", adj.Delta))
		return nil
	}
	return nil
}

// LikeChanged moves the likes counter and likedBy set of a post or comment.
func (r *Reconciler) LikeChanged(ctx context.Context, targetType, targetID, userID string, active bool) error {
	return r.Adjust(ctx, Adjustment{
		Entity:   Entity(targetType),
		EntityID: targetID,
		Field:    FieldLikes,
		Delta:    delta(active),
		Member:   userID,
	})
}

// FollowChanged moves the followee's followers count and the follower's
// following count. The two rows are updated independently; both updates are
// attempted even if the first fails.
func (r *Reconciler) FollowChanged(ctx context.Context, followerID, followingID string, active bool) error {
	d := delta(active)
	followers := r.Adjust(ctx, Adjustment{
		Entity:   EntityUser,
		EntityID: followingID,
		Field:    FieldFollowersCount,
		Delta:    d,
	})
	following := r.Adjust(ctx, Adjustment{
		Entity:   EntityUser,
		EntityID: followerID,
		Field:    FieldFollowingCount,
		Delta:    d,
	})
	return errors.Join(followers, following)
}

// Rebuild recomputes every counter from the relation records. It is the
// offline repair for drift left by partial failures.
func (r *Reconciler) Rebuild(ctx context.Context) (RebuildStats, error) {
	r.log.Info("rebuilding counters from relation records")
	stats, err := r.store.Rebuild(ctx)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("rebuild counters: %w", err)
	}
	r.log.Info("counters rebuilt",
		zap.Int64("posts", stats.Posts),
		zap.Int64("comments", stats.Comments),
		zap.Int64("users", stats.Users))
	return stats, nil
}

func delta(active bool) int {
	if active {
		return 1
	}
	return -1
}
