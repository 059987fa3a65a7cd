package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialcore/internal/handler"
	"socialcore/internal/httputil"
	authmw "socialcore/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	LikeHandler         *handler.LikeHandler
	FollowHandler       *handler.FollowHandler
	CommentHandler      *handler.CommentHandler
	BookmarkHandler     *handler.BookmarkHandler
	NotificationHandler *handler.NotificationHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	optional := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	// Public reads with optional authentication
	r.Group(func(r chi.Router) {
		r.Use(optional)

		r.Get("/likes/count", cfg.LikeHandler.Count)
		r.Get("/users/{id}/likes", cfg.LikeHandler.ListByUser)
		r.Get("/users/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.Get("/users/{id}/following", cfg.FollowHandler.GetFollowing)
		r.Get("/comments/{id}", cfg.CommentHandler.GetByID)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.ListByPost)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/likes/toggle", cfg.LikeHandler.Toggle)
		r.Get("/likes/status", cfg.LikeHandler.Status)

		r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)

		r.Post("/comments", cfg.CommentHandler.Create)
		r.Patch("/comments/{id}", cfg.CommentHandler.Update)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

		r.Post("/posts/{id}/bookmark", cfg.BookmarkHandler.Add)
		r.Delete("/posts/{id}/bookmark", cfg.BookmarkHandler.Remove)
		r.Get("/bookmarks", cfg.BookmarkHandler.List)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Patch("/read-all", cfg.NotificationHandler.MarkAllAsRead)
			r.Patch("/{id}/read", cfg.NotificationHandler.MarkAsRead)
			r.Delete("/{id}", cfg.NotificationHandler.Delete)
		})
	})

	return r
}
