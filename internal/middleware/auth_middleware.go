package middleware

import (
	"net/http"

	"mailsage/internal/handler"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the session user and stores it on the context
func AuthMiddleware(authHandler *handler.AuthHandler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authHandler.GetCurrentUser(c)
			if err != nil && handler.IsAuthError(err) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Not Authenticated",
					"code":  "authentication_failed",
				})
			}
			if err != nil {
				c.Logger().Error("Failed to resolve session user: ", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Failed to load user",
					"code":  "internal_error",
				})
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}
