package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialcore/internal/httputil"
	"socialcore/internal/service"
	"socialcore/internal/transport/http/middleware"
)

type BookmarkHandler struct {
	bookmarkService *service.BookmarkService
	log             *zap.Logger
}

func NewBookmarkHandler(bookmarkService *service.BookmarkService, log *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkService: bookmarkService,
		log:             log,
	}
}

func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.bookmarkService.Add(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to bookmark post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{Message: "Post bookmarked"})
}

func (h *BookmarkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.bookmarkService.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to remove bookmark")
		return
	}

	httputil.WriteMessage(w, "Bookmark removed")
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, limit, err := httputil.PageParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.bookmarkService.List(r.Context(), userID, page, limit)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch bookmarks")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
