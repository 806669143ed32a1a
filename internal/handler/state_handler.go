package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailsage/internal/service"
	"mailsage/internal/session"
)

type StateHandler struct {
	stateService service.StateService
	logger       echo.Logger
}

func NewStateHandler(stateService service.StateService, logger echo.Logger) *StateHandler {
	return &StateHandler{
		stateService: stateService,
		logger:       logger,
	}
}

// GetState returns the session snapshot
func (h *StateHandler) GetState(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	snapshot, err := h.stateService.Snapshot(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err, "Failed to load state")
	}
	return c.JSON(http.StatusOK, snapshot)
}

// PostAction applies one UI action
func (h *StateHandler) PostAction(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var action session.Action
	if err := c.Bind(&action); err != nil {
		return badRequest(c, "Invalid request body")
	}

	snapshot, err := h.stateService.Dispatch(c.Request().Context(), user.ID, action)
	if err != nil {
		return respondError(c, err, "Failed to apply action")
	}
	return c.JSON(http.StatusOK, snapshot)
}

// GetView applies the tab, q and range query parameters, when present, and
// returns the filtered list
func (h *StateHandler) GetView(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var actions []session.Action
	params := c.QueryParams()
	if params.Has("tab") {
		actions = append(actions, session.Action{Type: session.ActionSetTab, Value: params.Get("tab")})
	}
	if params.Has("q") {
		actions = append(actions, session.Action{Type: session.ActionSetSearch, Value: params.Get("q")})
	}
	if params.Has("range") {
		actions = append(actions, session.Action{Type: session.ActionSetTimeRange, Value: params.Get("range")})
	}

	snapshot, err := h.stateService.Dispatch(c.Request().Context(), user.ID, actions...)
	if err != nil {
		return respondError(c, err, "Failed to load view")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"emails": snapshot.Emails,
		"filter": snapshot.UI.Filter,
	})
}
