package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"socialcore/internal/app"
	"socialcore/internal/counter"
	"socialcore/internal/handler"
	"socialcore/internal/notify"
	"socialcore/internal/repository"
	"socialcore/internal/service"
	transport "socialcore/internal/transport/http"
)

func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if port != "" {
					a.Config.ServerPort = port
				}
				return serve(ctx, a)
			})
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(ctx context.Context, a *app.App) error {
	if err := a.Config.ValidateServer(); err != nil {
		return err
	}

	db, err := a.DB()
	if err != nil {
		return err
	}

	mailer, err := a.NotificationMailer(ctx)
	if err != nil {
		return fmt.Errorf("set up mailer: %w", err)
	}
	renderer, err := notify.NewRenderer(a.Config.FrontendURL)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	counters := counter.NewReconciler(counterRepo, a.Log)
	dispatcher := notify.NewDispatcher(notifRepo, userRepo, mailer, renderer, a.Log)

	likeService := service.NewLikeService(likeRepo, postRepo, commentRepo, counters, dispatcher, a.Log)
	followService := service.NewFollowService(followRepo, userRepo, counters, dispatcher, a.Log)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, dispatcher, a.Log)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, postRepo, a.Log)
	notificationService := service.NewNotificationService(notifRepo, a.Log)

	router := transport.NewRouter(transport.RouterConfig{
		LikeHandler:         handler.NewLikeHandler(likeService, a.Log),
		FollowHandler:       handler.NewFollowHandler(followService, a.Log),
		CommentHandler:      handler.NewCommentHandler(commentService, a.Log),
		BookmarkHandler:     handler.NewBookmarkHandler(bookmarkService, a.Log),
		NotificationHandler: handler.NewNotificationHandler(notificationService, a.Log),
		JWTSecret:           a.Config.JWTSecret,
	})

	return transport.Run(ctx, a.Config.ServerPort, router, a.Log)
}
