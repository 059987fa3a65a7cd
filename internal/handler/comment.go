package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialcore/internal/httputil"
	"socialcore/internal/model"
	"socialcore/internal/service"
	"socialcore/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
	log            *zap.Logger
}

func NewCommentHandler(commentService *service.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		log:            log,
	}
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, req)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to create comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	comment, err := h.commentService.GetByID(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch comment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateCommentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.commentService.Update(r.Context(), chi.URLParam(r, "id"), userID, req.Content)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to update comment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	deleted, err := h.commentService.Delete(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to delete comment")
		return
	}
	// A concurrent delete got there first.
	if !deleted {
		httputil.WriteDomainError(w, r, h.log, model.ErrCommentNotFound, "Failed to delete comment")
		return
	}

	httputil.WriteMessage(w, "Comment deleted")
}

func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	page, limit, err := httputil.PageParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.commentService.ListByPost(r.Context(), chi.URLParam(r, "id"), userID, page, limit)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
