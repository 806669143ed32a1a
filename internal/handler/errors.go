package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mailsage/internal/service"
	"mailsage/internal/session"
	"mailsage/internal/view"
)

const (
	codeAuthentication = "authentication_failed"
	codeUpstream       = "upstream_unavailable"
	codeNotFound       = "not_found"
	codeConflict       = "already_summarizing"
	codeInvalid        = "invalid_request"
	codeInternal       = "internal_error"
)

// UserContextKey is where AuthMiddleware stores the signed-in user.
const UserContextKey = "user"

func errorJSON(c echo.Context, status int, message, code string) error {
	return c.JSON(status, map[string]string{"error": message, "code": code})
}

func unauthorized(c echo.Context) error {
	return errorJSON(c, http.StatusUnauthorized, "Not Authenticated", codeAuthentication)
}

func badRequest(c echo.Context, message string) error {
	return errorJSON(c, http.StatusBadRequest, message, codeInvalid)
}

// respondError maps a service error onto a status code. upstreamMessage is
// shown when the mail source or the oracle failed.
func respondError(c echo.Context, err error, upstreamMessage string) error {
	switch {
	case errors.Is(err, service.ErrAuthentication):
		return unauthorized(c)
	case errors.Is(err, service.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Email not found", codeNotFound)
	case errors.Is(err, service.ErrAlreadySummarizing):
		return errorJSON(c, http.StatusConflict, "Summary already in progress", codeConflict)
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, view.ErrInvalidFilter):
		return badRequest(c, err.Error())
	case service.IsUpstream(err), errors.Is(err, context.DeadlineExceeded):
		return errorJSON(c, http.StatusBadGateway, upstreamMessage, codeUpstream)
	default:
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Internal error", codeInternal)
	}
}
