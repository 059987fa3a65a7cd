package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"socialcore/internal/model"
	"socialcore/internal/notify"
)

// Default page sizes per resource
const (
	defaultLikesLimit         = 10
	defaultFollowsLimit       = 20
	defaultCommentsLimit      = 20
	defaultBookmarksLimit     = 20
	defaultNotificationsLimit = 20
)

// Notifier records a notification and attempts its email.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notice) error
}

// fetchPage runs a page query and its total count concurrently.
func fetchPage[T any](
	ctx context.Context,
	list func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int, error),
) ([]T, int, error) {
	var items []T
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, model.Dependency("fetch page", err)
	}

	if items == nil {
		items = []T{}
	}
	return items, total, nil
}

// validateContent trims and length-checks comment text.
func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return "", model.ErrContentTooLong
	}
	return content, nil
}

func strPtr(s string) *string {
	return &s
}
