package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"socialcore/internal/counter"
	"socialcore/internal/model"
	"socialcore/internal/notify"
	"socialcore/internal/relation"
	"socialcore/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	engine     *relation.Engine
	counters   *counter.Reconciler
	notifier   Notifier
	log        *zap.Logger
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	counters *counter.Reconciler,
	notifier Notifier,
	log *zap.Logger,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		engine:     relation.NewEngine(followRepo, log),
		counters:   counters,
		notifier:   notifier,
		log:        log.With(zap.String("component", "follow_service")),
	}
}

func followKey(followerID, followingID string) relation.Key {
	return relation.Key{
		Kind:       relation.KindFollow,
		ActorID:    followerID,
		TargetType: relation.TargetUser,
		TargetID:   followingID,
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) error {
	ids, err := model.ParseIDs(followerID, followingID)
	if err != nil {
		return err
	}
	followerID, followingID = ids[0], ids[1]

	if followerID == followingID {
		return model.ErrCannotFollowSelf
	}

	exists, err := s.userRepo.Exists(ctx, followingID)
	if err != nil {
		return model.Dependency("check user", err)
	}
	if !exists {
		return model.ErrUserNotFound
	}

	err = s.engine.Add(ctx, followKey(followerID, followingID), s.adjustCounters, s.notifyFollowee)
	if errors.Is(err, model.ErrRelationExists) {
		return model.ErrAlreadyFollowing
	}
	if err != nil {
		return err
	}

	s.log.Info("user followed", zap.String("follower", followerID), zap.String("following", followingID))
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	ids, err := model.ParseIDs(followerID, followingID)
	if err != nil {
		return err
	}
	followerID, followingID = ids[0], ids[1]

	err = s.engine.Remove(ctx, followKey(followerID, followingID), s.adjustCounters)
	if errors.Is(err, model.ErrRelationAbsent) {
		return model.ErrNotFollowing
	}
	if err != nil {
		return err
	}

	s.log.Info("user unfollowed", zap.String("follower", followerID), zap.String("following", followingID))
	return nil
}

// GetFollowers lists the users following userID, most recent first. When a
// viewer is given, each entry says whether the viewer follows that user.
func (s *FollowService) GetFollowers(ctx context.Context, userID string, page, limit int, viewerID *string) (*model.FollowListResponse, error) {
	userID, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := model.NewPage(page, limit, defaultFollowsLimit)

	users, total, err := fetchPage(ctx,
		func(ctx context.Context) ([]model.UserSummary, error) { return s.followRepo.GetFollowers(ctx, userID, p) },
		func(ctx context.Context) (int, error) { return s.followRepo.CountFollowers(ctx, userID) },
	)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.FollowListResponse{
		Users:      users,
		Pagination: model.NewPagination(p, total),
	}, nil
}

// GetFollowing lists the users userID follows. See GetFollowers.
func (s *FollowService) GetFollowing(ctx context.Context, userID string, page, limit int, viewerID *string) (*model.FollowListResponse, error) {
	userID, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := model.NewPage(page, limit, defaultFollowsLimit)

	users, total, err := fetchPage(ctx,
		func(ctx context.Context) ([]model.UserSummary, error) { return s.followRepo.GetFollowing(ctx, userID, p) },
		func(ctx context.Context) (int, error) { return s.followRepo.CountFollowing(ctx, userID) },
	)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.FollowListResponse{
		Users:      users,
		Pagination: model.NewPagination(p, total),
	}, nil
}

func (s *FollowService) requireUser(ctx context.Context, userID string) (string, error) {
	userID, err := model.ParseID(userID)
	if err != nil {
		return "", err
	}
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return "", model.Dependency("check user", err)
	}
	if !exists {
		return "", model.ErrUserNotFound
	}
	return userID, nil
}

// enrichWithFollowStatus batch-checks, in one query, whether the viewer
// follows each listed user. On failure the list is returned unenriched.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID string, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]string, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		s.log.Warn("follow status enrichment failed", zap.String("viewer", viewerID), zap.Error(err))
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}
	return users
}

func (s *FollowService) adjustCounters(ctx context.Context, t relation.Transition) error {
	return s.counters.FollowChanged(ctx, t.Key.ActorID, t.Key.TargetID, t.Active)
}

func (s *FollowService) notifyFollowee(ctx context.Context, t relation.Transition) error {
	return s.notifier.Notify(ctx, notify.Notice{
		Type:        model.NotificationTypeFollow,
		RecipientID: t.Key.TargetID,
		ActorID:     t.Key.ActorID,
	})
}
