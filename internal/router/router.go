package router

import (
	"net/http"

	"mailsage/internal/handler"
	"mailsage/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Inbox     *handler.InboxHandler
	Summary   *handler.SummaryHandler
	Assistant *handler.AssistantHandler
	State     *handler.StateHandler
	Events    *handler.EventsHandler
}

func SetupRoutes(e *echo.Echo, h Handlers) {
	// Public routes
	e.GET("/auth/:provider", h.Auth.BeginAuthHandler)
	e.GET("/auth/:provider/callback", h.Auth.CallbackHandler)
	e.GET("/auth/logout", h.Auth.LogoutHandler)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Protected API routes
	protected := e.Group("/api")
	protected.Use(middleware.AuthMiddleware(h.Auth))

	protected.GET("/me", h.Auth.Me)

	protected.GET("/emails", h.Inbox.GetEmails)
	protected.POST("/emails/:id/pin", h.Inbox.TogglePin)
	protected.POST("/emails/:id/archive", h.Inbox.Archive)
	protected.DELETE("/emails/:id", h.Inbox.Delete)
	protected.POST("/emails/:id/summary", h.Summary.ToggleSummary)
	protected.POST("/emails/:id/summary/regenerate", h.Summary.RegenerateSummary)

	protected.POST("/summary", h.Summary.Summarize)
	protected.POST("/chat", h.Assistant.Chat)
	protected.POST("/assistant", h.Assistant.Ask)

	protected.GET("/view", h.State.GetView)
	protected.GET("/state", h.State.GetState)
	protected.POST("/state/actions", h.State.PostAction)

	// Pin, summary and refresh notifications via Server-Sent Events (SSE)
	protected.GET("/sse", h.Events.Stream)
}
