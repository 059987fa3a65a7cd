package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialcore/internal/httputil"
	"socialcore/internal/service"
	"socialcore/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
	log           *zap.Logger
}

func NewFollowHandler(followService *service.FollowService, log *zap.Logger) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		log:           log,
	}
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, chi.URLParam(r, "id")); err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to follow user")
		return
	}

	httputil.WriteMessage(w, "Successfully followed user")
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, chi.URLParam(r, "id")); err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to unfollow user")
		return
	}

	httputil.WriteMessage(w, "Successfully unfollowed user")
}

func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	page, limit, err := httputil.PageParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.followService.GetFollowers(r.Context(), chi.URLParam(r, "id"), page, limit, viewer(r))
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch followers")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	page, limit, err := httputil.PageParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.followService.GetFollowing(r.Context(), chi.URLParam(r, "id"), page, limit, viewer(r))
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch following")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// viewer returns the optional authenticated user.
func viewer(r *http.Request) *string {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
