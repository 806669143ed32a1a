package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailsage/internal/service"
)

type InboxHandler struct {
	inboxService service.InboxService
	logger       echo.Logger
}

func NewInboxHandler(inboxService service.InboxService, logger echo.Logger) *InboxHandler {
	return &InboxHandler{
		inboxService: inboxService,
		logger:       logger,
	}
}

// GetEmails refetches the inbox and returns the reconciled list
func (h *InboxHandler) GetEmails(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	emails, err := h.inboxService.Refresh(c.Request().Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to fetch emails:", err)
		return respondError(c, err, "Failed to load emails")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"emails": emails,
	})
}

// TogglePin flips the pin state of one message
func (h *InboxHandler) TogglePin(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	id := c.Param("id")
	pinned, err := h.inboxService.TogglePin(c.Request().Context(), user.ID, id)
	if err != nil {
		return respondError(c, err, "Failed to pin email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":       id,
		"isPinned": pinned,
	})
}

// Archive removes a message from the inbox view
func (h *InboxHandler) Archive(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	id := c.Param("id")
	if err := h.inboxService.Archive(c.Request().Context(), user.ID, id); err != nil {
		return respondError(c, err, "Failed to archive email")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":     id,
		"status": "archived",
	})
}

// Delete removes a message from the inbox view
func (h *InboxHandler) Delete(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	id := c.Param("id")
	if err := h.inboxService.Delete(c.Request().Context(), user.ID, id); err != nil {
		return respondError(c, err, "Failed to delete email")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":     id,
		"status": "deleted",
	})
}
