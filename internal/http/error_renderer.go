package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/vv-events/dashboard/internal/errors"
)

// msgGenericError is shown when an error carries nothing safe to display.
const msgGenericError = "Une erreur est survenue. Veuillez réessayer."

// DetermineErrorStatus maps an error to the HTTP status it should be rendered with.
// Errors that are not AppErrors are internal.
func DetermineErrorStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeUpstream:
		return http.StatusBadGateway
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		// nginx's "client closed request"; nobody reads it.
		return 499
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the JSON "error" value for err.
func errorCode(err error) string {
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return string(apperrors.ErrCodeTimeout)
	case errors.Is(err, context.Canceled):
		return string(apperrors.ErrCodeCanceled)
	default:
		return ErrCodeInternal
	}
}

// publicMessage keeps AppError messages (they are written for the user) and
// hides everything else behind a generic message.
func publicMessage(err error) string {
	if apperrors.GetCode(err) == "" {
		return msgGenericError
	}
	if msg := apperrors.GetMessage(err); msg != "" {
		return msg
	}
	return msgGenericError
}

// RenderError writes err as a JSON error body. Internal errors are logged with
// their cause; their message never reaches the client.
func RenderError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := DetermineErrorStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	WriteJSON(w, status, ErrorBody{
		Error:   errorCode(err),
		Message: publicMessage(err),
		Field:   apperrors.GetField(err),
	})
}
