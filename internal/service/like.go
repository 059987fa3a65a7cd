package service

import (
	"context"

	"go.uber.org/zap"

	"socialcore/internal/counter"
	"socialcore/internal/model"
	"socialcore/internal/notify"
	"socialcore/internal/relation"
	"socialcore/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	engine      *relation.Engine
	counters    *counter.Reconciler
	notifier    Notifier
	log         *zap.Logger
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	counters *counter.Reconciler,
	notifier Notifier,
	log *zap.Logger,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		engine:      relation.NewEngine(likeRepo, log),
		counters:    counters,
		notifier:    notifier,
		log:         log.With(zap.String("component", "like_service")),
	}
}

// likeTarget is what a like needs to know about the liked entity.
type likeTarget struct {
	ownerID   string
	postID    string
	commentID *string
	postTitle string
	quoted    string
}

// Toggle likes the target if the actor has not liked it yet and unlikes it
// otherwise. It reports whether the target is liked afterwards.
func (s *LikeService) Toggle(ctx context.Context, actorID string, req model.ToggleLikeRequest) (bool, error) {
	targetType, err := model.ParseTargetType(req.TargetType)
	if err != nil {
		return false, err
	}
	ids, err := model.ParseIDs(actorID, req.TargetID)
	if err != nil {
		return false, err
	}
	actorID, targetID := ids[0], ids[1]

	target, err := s.resolveTarget(ctx, targetType, targetID)
	if err != nil {
		return false, err
	}

	key := relation.Key{
		Kind:       relation.KindLike,
		ActorID:    actorID,
		TargetType: targetType,
		TargetID:   targetID,
	}

	liked, err := s.engine.Toggle(ctx, key, s.adjustCounter, s.notifyOwner(target))
	if err != nil {
		return false, err
	}

	s.log.Info("like toggled",
		zap.String("actor", actorID),
		zap.String("target_type", targetType),
		zap.String("target", targetID),
		zap.Bool("liked", liked))
	return liked, nil
}

// Count returns how many like records exist for the target.
func (s *LikeService) Count(ctx context.Context, targetType, targetID string) (int, error) {
	targetType, err := model.ParseTargetType(targetType)
	if err != nil {
		return 0, err
	}
	targetID, err = model.ParseID(targetID)
	if err != nil {
		return 0, err
	}

	count, err := s.likeRepo.CountByTarget(ctx, targetType, targetID)
	if err != nil {
		return 0, model.Dependency("count likes", err)
	}
	return count, nil
}

// IsLiked reports whether the actor currently likes the target.
func (s *LikeService) IsLiked(ctx context.Context, actorID, targetType, targetID string) (bool, error) {
	targetType, err := model.ParseTargetType(targetType)
	if err != nil {
		return false, err
	}
	ids, err := model.ParseIDs(actorID, targetID)
	if err != nil {
		return false, err
	}

	liked, err := s.likeRepo.Exists(ctx, relation.Key{
		Kind:       relation.KindLike,
		ActorID:    ids[0],
		TargetType: targetType,
		TargetID:   ids[1],
	})
	if err != nil {
		return false, model.Dependency("check like", err)
	}
	return liked, nil
}

// ListByUser returns the likes a user has made, newest first. targetType
// may be empty to include both posts and comments.
func (s *LikeService) ListByUser(ctx context.Context, userID, targetType string, page, limit int) (*model.LikeListResponse, error) {
	userID, err := model.ParseID(userID)
	if err != nil {
		return nil, err
	}
	if targetType != "" {
		if targetType, err = model.ParseTargetType(targetType); err != nil {
			return nil, err
		}
	}
	p := model.NewPage(page, limit, defaultLikesLimit)

	likes, total, err := fetchPage(ctx,
		func(ctx context.Context) ([]model.Like, error) {
			return s.likeRepo.ListByUser(ctx, userID, targetType, p)
		},
		func(ctx context.Context) (int, error) { return s.likeRepo.CountByUser(ctx, userID, targetType) },
	)
	if err != nil {
		return nil, err
	}

	return &model.LikeListResponse{
		Likes:      likes,
		Pagination: model.NewPagination(p, total),
	}, nil
}

func (s *LikeService) resolveTarget(ctx context.Context, targetType, targetID string) (*likeTarget, error) {
	if targetType == model.TargetPost {
		post, err := s.postRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, model.Dependency("load post", err)
		}
		return &likeTarget{
			ownerID:   post.UserID,
			postID:    post.ID,
			postTitle: post.Title,
		}, nil
	}

	comment, err := s.commentRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, model.Dependency("load comment", err)
	}
	return &likeTarget{
		ownerID:   comment.UserID,
		postID:    comment.PostID,
		commentID: strPtr(comment.ID),
		quoted:    comment.Content,
	}, nil
}

func (s *LikeService) adjustCounter(ctx context.Context, t relation.Transition) error {
	return s.counters.LikeChanged(ctx, t.Key.TargetType, t.Key.TargetID, t.Key.ActorID, t.Active)
}

// notifyOwner tells the owner about new likes. Unlikes are silent.
func (s *LikeService) notifyOwner(target *likeTarget) relation.Effect {
	return func(ctx context.Context, t relation.Transition) error {
		if !t.Active {
			return nil
		}
		return s.notifier.Notify(ctx, notify.Notice{
			Type:        model.NotificationTypeLike,
			RecipientID: target.ownerID,
			ActorID:     t.Key.ActorID,
			PostID:      strPtr(target.postID),
			CommentID:   target.commentID,
			PostTitle:   target.postTitle,
			Quoted:      target.quoted,
		})
	}
}
