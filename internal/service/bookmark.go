package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"socialcore/internal/model"
	"socialcore/internal/relation"
	"socialcore/internal/repository"
)

// BookmarkService saves posts for later. Bookmarks have no counter and
// notify nobody.
type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	postRepo     repository.PostRepository
	engine       *relation.Engine
	log          *zap.Logger
}

func NewBookmarkService(
	bookmarkRepo repository.BookmarkRepository,
	postRepo repository.PostRepository,
	log *zap.Logger,
) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		postRepo:     postRepo,
		engine:       relation.NewEngine(bookmarkRepo, log),
		log:          log.With(zap.String("component", "bookmark_service")),
	}
}

func bookmarkKey(userID, postID string) relation.Key {
	return relation.Key{
		Kind:       relation.KindBookmark,
		ActorID:    userID,
		TargetType: model.TargetPost,
		TargetID:   postID,
	}
}

func (s *BookmarkService) Add(ctx context.Context, userID, postID string) error {
	ids, err := model.ParseIDs(userID, postID)
	if err != nil {
		return err
	}
	userID, postID = ids[0], ids[1]

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return model.Dependency("load post", err)
	}

	err = s.engine.Add(ctx, bookmarkKey(userID, postID))
	if errors.Is(err, model.ErrRelationExists) {
		return model.ErrAlreadyBookmarked
	}
	if err != nil {
		return err
	}

	s.log.Info("post bookmarked", zap.String("user", userID), zap.String("post", postID))
	return nil
}

func (s *BookmarkService) Remove(ctx context.Context, userID, postID string) error {
	ids, err := model.ParseIDs(userID, postID)
	if err != nil {
		return err
	}
	userID, postID = ids[0], ids[1]

	err = s.engine.Remove(ctx, bookmarkKey(userID, postID))
	if errors.Is(err, model.ErrRelationAbsent) {
		return model.ErrBookmarkNotFound
	}
	if err != nil {
		return err
	}

	s.log.Info("bookmark removed", zap.String("user", userID), zap.String("post", postID))
	return nil
}

// List returns the user's bookmarks with their posts, newest first.
func (s *BookmarkService) List(ctx context.Context, userID string, page, limit int) (*model.BookmarkListResponse, error) {
	userID, err := model.ParseID(userID)
	if err != nil {
		return nil, err
	}
	p := model.NewPage(page, limit, defaultBookmarksLimit)

	bookmarks, total, err := fetchPage(ctx,
		func(ctx context.Context) ([]model.Bookmark, error) { return s.bookmarkRepo.ListByUser(ctx, userID, p) },
		func(ctx context.Context) (int, error) { return s.bookmarkRepo.CountByUser(ctx, userID) },
	)
	if err != nil {
		return nil, err
	}

	return &model.BookmarkListResponse{
		Bookmarks:  bookmarks,
		Pagination: model.NewPagination(p, total),
	}, nil
}
