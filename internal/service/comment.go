package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"socialcore/internal/model"
	"socialcore/internal/notify"
	"socialcore/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	log *zap.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		log:         log.With(zap.String("component", "comment_service")),
		now:         time.Now,
	}
}

// Create adds a comment or a reply to a post. Replies may only target
// top-level comments of the same post.
func (s *CommentService) Create(ctx context.Context, actorID string, req model.CreateCommentRequest) (*model.CommentView, error) {
	ids, err := model.ParseIDs(actorID, req.PostID)
	if err != nil {
		return nil, err
	}
	actorID, postID := ids[0], ids[1]

	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, model.Dependency("load post", err)
	}

	var parent *model.Comment
	if req.ParentCommentID != nil {
		parentID, err := model.ParseID(*req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		parent, err = s.commentRepo.GetByID(ctx, parentID)
		if errors.Is(err, model.ErrCommentNotFound) {
			return nil, model.ErrParentCommentNotFound
		}
		if err != nil {
			return nil, model.Dependency("load parent comment", err)
		}
		if parent.PostID != post.ID {
			return nil, model.ErrInvalidRelation
		}
		if parent.IsReply() {
			return nil, model.ErrMaxDepthExceeded
		}
	}

	comment := &model.Comment{
		ID:      model.NewID(),
		PostID:  post.ID,
		UserID:  actorID,
		Content: content,
	}
	if parent != nil {
		comment.ParentCommentID = strPtr(parent.ID)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, model.Dependency("create comment", err)
	}

	s.log.Info("comment created",
		zap.String("id", comment.ID),
		zap.String("post", post.ID),
		zap.String("user", actorID),
		zap.Bool("reply", parent != nil))

	s.fanOut(ctx, post, parent, comment)

	view := &model.CommentView{Comment: *comment, IsOwner: true}
	if author, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		view.Author = author.Summary()
	} else {
		s.log.Warn("load comment author failed", zap.String("user", actorID), zap.Error(err))
	}
	return view, nil
}

// fanOut sends the comment and reply notices. Each is gated and absorbed on
// its own, so one failing never stops the other or the comment.
func (s *CommentService) fanOut(ctx context.Context, post *model.Post, parent, comment *model.Comment) {
	notify.BestEffort(ctx, s.log, "notify comment", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, notify.Notice{
			Type:        model.NotificationTypeComment,
			RecipientID: post.UserID,
			ActorID:     comment.UserID,
			PostID:      strPtr(post.ID),
			CommentID:   strPtr(comment.ID),
			PostTitle:   post.Title,
			Excerpt:     comment.Content,
		})
	})

	if parent == nil {
		return
	}
	notify.BestEffort(ctx, s.log, "notify reply", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, notify.Notice{
			Type:        model.NotificationTypeReply,
			RecipientID: parent.UserID,
			ActorID:     comment.UserID,
			PostID:      strPtr(post.ID),
			CommentID:   strPtr(comment.ID),
			PostTitle:   post.Title,
			Excerpt:     comment.Content,
			Quoted:      parent.Content,
		})
	})
}

// Update edits a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, commentID, actorID, content string) (*model.CommentView, error) {
	ids, err := model.ParseIDs(commentID, actorID)
	if err != nil {
		return nil, err
	}
	commentID, actorID = ids[0], ids[1]

	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.Update(ctx, commentID, actorID, content, s.now())
	if err != nil {
		return nil, model.Dependency("update comment", err)
	}

	s.log.Info("comment updated", zap.String("id", commentID), zap.String("user", actorID))

	view := &model.CommentView{Comment: *comment, IsOwner: true}
	if author, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		view.Author = author.Summary()
	}
	return view, nil
}

// Delete removes a comment and its replies. The comment's author and the
// post's author may both delete it. It reports whether the comment itself
// was removed by this call.
func (s *CommentService) Delete(ctx context.Context, commentID, actorID string) (bool, error) {
	ids, err := model.ParseIDs(commentID, actorID)
	if err != nil {
		return false, err
	}
	commentID, actorID = ids[0], ids[1]

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return false, model.Dependency("load comment", err)
	}

	if comment.UserID != actorID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil && !errors.Is(err, model.ErrPostNotFound) {
			return false, model.Dependency("load post", err)
		}
		if post == nil || post.UserID != actorID {
			return false, model.ErrCannotDelete
		}
	}

	replies, err := s.commentRepo.DeleteReplies(ctx, commentID)
	if err != nil {
		return false, model.Dependency("delete replies", err)
	}
	deleted, err := s.commentRepo.Delete(ctx, commentID)
	if err != nil {
		return false, model.Dependency("delete comment", err)
	}

	s.log.Info("comment deleted",
		zap.String("id", commentID),
		zap.String("user", actorID),
		zap.Int64("replies", replies),
		zap.Bool("deleted", deleted))
	return deleted, nil
}

// GetByID returns a single comment as seen by actorID, which may be empty.
func (s *CommentService) GetByID(ctx context.Context, commentID, actorID string) (*model.CommentView, error) {
	commentID, err := model.ParseID(commentID)
	if err != nil {
		return nil, err
	}
	if actorID, err = viewerID(actorID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, model.Dependency("load comment", err)
	}

	view := &model.CommentView{Comment: *comment, IsOwner: actorID != "" && comment.UserID == actorID}
	if author, err := s.userRepo.GetByID(ctx, comment.UserID); err == nil {
		view.Author = author.Summary()
	}
	return view, nil
}

// ListByPost returns a page of top-level comments, newest first, each with
// all of its replies oldest first. actorID may be empty for anonymous
// readers.
func (s *CommentService) ListByPost(ctx context.Context, postID, actorID string, page, limit int) (*model.CommentListResponse, error) {
	postID, err := model.ParseID(postID)
	if err != nil {
		return nil, err
	}
	if actorID, err = viewerID(actorID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, model.Dependency("load post", err)
	}
	p := model.NewPage(page, limit, defaultCommentsLimit)

	topLevel, total, err := fetchPage(ctx,
		func(ctx context.Context) ([]model.CommentView, error) {
			return s.commentRepo.ListTopLevel(ctx, postID, p)
		},
		func(ctx context.Context) (int, error) { return s.commentRepo.CountTopLevel(ctx, postID) },
	)
	if err != nil {
		return nil, err
	}

	threads := make([]model.ThreadComment, len(topLevel))
	if len(topLevel) > 0 {
		parentIDs := make([]string, len(topLevel))
		for i, c := range topLevel {
			parentIDs[i] = c.ID
		}

		replies, err := s.commentRepo.ListReplies(ctx, parentIDs)
		if err != nil {
			return nil, model.Dependency("list replies", err)
		}

		byParent := make(map[string][]model.CommentView, len(topLevel))
		for _, r := range replies {
			if r.ParentCommentID == nil {
				continue
			}
			r.IsOwner = actorID != "" && r.UserID == actorID
			byParent[*r.ParentCommentID] = append(byParent[*r.ParentCommentID], r)
		}

		for i, c := range topLevel {
			c.IsOwner = actorID != "" && c.UserID == actorID
			threads[i] = model.ThreadComment{
				CommentView: c,
				Replies:     byParent[c.ID],
			}
			if threads[i].Replies == nil {
				threads[i].Replies = []model.CommentView{}
			}
		}
	}

	return &model.CommentListResponse{
		Comments:   threads,
		Pagination: model.NewPagination(p, total),
	}, nil
}

// viewerID canonicalises an optional actor id so ownership comparisons match
// the ids stored by Create.
func viewerID(actorID string) (string, error) {
	if actorID == "" {
		return "", nil
	}
	return model.ParseID(actorID)
}
