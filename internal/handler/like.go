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

type LikeHandler struct {
	likeService *service.LikeService
	log         *zap.Logger
}

func NewLikeHandler(likeService *service.LikeService, log *zap.Logger) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
		log:         log,
	}
}

type toggleLikeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.ToggleLikeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	liked, err := h.likeService.Toggle(r.Context(), userID, req)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to toggle like")
		return
	}

	message := req.TargetType + " unliked"
	if liked {
		message = req.TargetType + " liked"
	}
	httputil.WriteJSON(w, http.StatusOK, toggleLikeResponse{Message: message, Liked: liked})
}

// Count answers GET /likes/count?targetType=Post&targetId=...
func (h *LikeHandler) Count(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := h.likeService.Count(r.Context(), q.Get("targetType"), q.Get("targetId"))
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to count likes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Status answers GET /likes/status?targetType=Post&targetId=...
func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	q := r.URL.Query()
	liked, err := h.likeService.IsLiked(r.Context(), userID, q.Get("targetType"), q.Get("targetId"))
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to check like status")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// ListByUser answers GET /users/{id}/likes with an optional targetType filter.
func (h *LikeHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	page, limit, err := httputil.PageParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	targetType := r.URL.Query().Get("targetType")
	result, err := h.likeService.ListByUser(r.Context(), chi.URLParam(r, "id"), targetType, page, limit)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch likes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
