package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialcore/internal/httputil"
	"socialcore/internal/service"
	"socialcore/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	log                 *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		log:                 log,
	}
}

// List answers GET /notifications?unread=true&page=&limit=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var unreadOnly bool
	if raw := r.URL.Query().Get("unread"); raw != "" {
		if unreadOnly, err = strconv.ParseBool(raw); err != nil {
			httputil.WriteBadRequest(w, "unread must be true or false")
			return
		}
	}

	result, err := h.notificationService.List(r.Context(), userID, unreadOnly, page, limit)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to fetch notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	n, err := h.notificationService.MarkAsRead(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to update notification")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to update notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.notificationService.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		httputil.WriteDomainError(w, r, h.log, err, "Failed to delete notification")
		return
	}

	httputil.WriteMessage(w, "Notification deleted")
}
