package handler

import (
	"errors"
	"net/http"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
)

// StatusCode maps a processing error to the HTTP status returned to GitHub.
func StatusCode(err error) int {
	var transportErr *mail.TransportError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.Is(err, notification.ErrMalformedPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorReason(err error) string {
	var (
		transportErr *mail.TransportError
		internalErr  *notification.InternalError
	)
	switch {
	case errors.As(err, &transportErr):
		return "transport-" + string(transportErr.Category)
	case errors.Is(err, notification.ErrMalformedPayload):
		return "malformed-payload"
	case errors.Is(err, config.ErrMissingSecret), errors.Is(err, notification.ErrNoSender), errors.Is(err, mail.ErrNoRecipient),
		errors.Is(err, mail.ErrInvalidAddress):
		return "configuration"
	case errors.As(err, &internalErr):
		return "internal"
	default:
		return "unknown"
	}
}
