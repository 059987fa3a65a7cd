// Package app assembles the process-wide dependencies shared by the CLI
// commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"socialcore/internal/config"
	"socialcore/internal/database"
	"socialcore/internal/logger"
	"socialcore/internal/mail"
	"socialcore/internal/queue"
	"socialcore/internal/redis"
)

const sentryFlushTimeout = 2 * time.Second

// App owns the long-lived resources of one process.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	db    *sqlx.DB
	redis *redis.Client
}

// New loads configuration and sets up logging and error reporting.
// Connections are opened lazily by DB and Redis.
func New() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		})
		if err != nil {
			log.Warn("sentry init failed, continuing without error reporting", zap.Error(err))
		}
	}

	return &App{Config: cfg, Log: log}, nil
}

func (a *App) DB() (*sqlx.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Connect(a.Config, a.Log)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *App) Redis(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := redis.NewClient(ctx, a.Config.RedisURL, a.Log)
	if err != nil {
		return nil, err
	}
	a.redis = client
	return client, nil
}

// DirectMailer is the mailer that actually delivers: SES when configured,
// otherwise a mailer that only logs.
func (a *App) DirectMailer(ctx context.Context) (mail.Mailer, error) {
	if !a.Config.SESEnabled() {
		a.Log.Warn("SES not configured, emails will only be logged")
		return mail.NewLogMailer(a.Log), nil
	}
	return mail.NewSESMailer(ctx, mail.SESConfig{
		Region:          a.Config.AWSRegion,
		AccessKeyID:     a.Config.AWSAccessKeyID,
		SecretAccessKey: a.Config.AWSSecretAccessKey,
		From:            a.Config.EmailFrom,
	}, a.Log)
}

// NotificationMailer is what the API hands emails to. With the queue enabled
// and Redis reachable, emails go to the mail stream for the workers;
// otherwise they are delivered inline.
func (a *App) NotificationMailer(ctx context.Context) (mail.Mailer, error) {
	if a.Config.MailQueueEnabled {
		client, err := a.Redis(ctx)
		if err == nil {
			return mail.NewQueueMailer(queue.NewPublisher(client.Client, a.Log)), nil
		}
		a.Log.Warn("redis unavailable, sending emails inline", zap.Error(err))
	}
	return a.DirectMailer(ctx)
}

// Close releases connections and flushes pending error reports.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Log.Warn("close database", zap.Error(err))
		}
	}
	sentry.Flush(sentryFlushTimeout)
	_ = a.Log.Sync()
}
