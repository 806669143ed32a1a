package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailsage/internal/model"
	"mailsage/internal/service"
)

type AssistantHandler struct {
	assistantService service.AssistantService
	logger           echo.Logger
}

func NewAssistantHandler(assistantService service.AssistantService, logger echo.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		logger:           logger,
	}
}

type chatRequest struct {
	Message      string               `json:"message"`
	EmailContext []model.ContextEntry `json:"emailContext"`
}

// Chat forwards a message and caller-supplied context to the assistant and
// returns its unprocessed reply
func (h *AssistantHandler) Chat(c echo.Context) error {
	if _, ok := CurrentUser(c); !ok {
		return unauthorized(c)
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	reply, err := h.assistantService.Chat(c.Request().Context(), req.Message, req.EmailContext)
	if err != nil {
		h.logger.Error("Chat failed:", err)
		return respondError(c, err, "Failed to chat")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"reply": reply,
	})
}

type askRequest struct {
	Message string `json:"message"`
}

// Ask runs one assistant turn against the session's current view
func (h *AssistantHandler) Ask(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req askRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	reply, err := h.assistantService.Ask(c.Request().Context(), user.ID, req.Message)
	if err != nil {
		return respondError(c, err, service.ReplyUnavailable)
	}

	return c.JSON(http.StatusOK, reply)
}
