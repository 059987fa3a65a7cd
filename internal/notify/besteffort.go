package notify

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// BestEffort runs fn and absorbs whatever goes wrong: errors and panics are
// logged, reported to Sentry and dropped. It reports whether fn succeeded.
func BestEffort(ctx context.Context, log *zap.Logger, op string, fn func(ctx context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in %s: %v", op, r)
			log.Error("best-effort operation panicked", zap.String("op", op), zap.Any("panic", r))
			capture(ctx, op, err)
			ok = false
		}
	}()

	if err := fn(ctx); err != nil {
		log.Warn("best-effort operation failed", zap.String("op", op), zap.Error(err))
		capture(ctx, op, err)
		return false
	}
	return true
}

func capture(ctx context.Context, op string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("op", op)
		hub.CaptureException(err)
	})
}
