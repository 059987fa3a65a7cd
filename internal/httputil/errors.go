package httputil

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"socialcore/internal/model"
)

// WriteDomainError maps a service error to its status by kind. Dependency
// failures are logged and reported and their detail is never shown to the
// client; fallback is the message used in that case.
func WriteDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, fallback string) {
	var typed *model.Error
	message := fallback
	if errors.As(err, &typed) {
		message = typed.Message
	}

	switch model.KindOf(err) {
	case model.KindInvalidInput:
		WriteBadRequest(w, message)
	case model.KindNotFound:
		WriteNotFound(w, message)
	case model.KindForbidden:
		WriteForbidden(w, message)
	case model.KindConflict:
		WriteConflict(w, message)
	default:
		log.Error(fallback,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		WriteInternalError(w, fallback)
	}
}
