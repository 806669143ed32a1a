package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailsage/internal/service"
)

type SummaryHandler struct {
	summaryService service.SummaryService
	logger         echo.Logger
}

func NewSummaryHandler(summaryService service.SummaryService, logger echo.Logger) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		logger:         logger,
	}
}

type summaryRequest struct {
	Text string `json:"text"`
}

// Summarize digests arbitrary text
func (h *SummaryHandler) Summarize(c echo.Context) error {
	if _, ok := CurrentUser(c); !ok {
		return unauthorized(c)
	}

	var req summaryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	summary, err := h.summaryService.SummarizeText(c.Request().Context(), req.Text)
	if err != nil {
		h.logger.Error("Failed to summarize:", err)
		return respondError(c, err, "Failed to summarize")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"summary": summary,
	})
}

// ToggleSummary shows, hides or creates the summary of one message
func (h *SummaryHandler) ToggleSummary(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	email, err := h.summaryService.ToggleSummary(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to summarize")
	}

	return c.JSON(http.StatusOK, email)
}

// RegenerateSummary discards the cached summary and builds a new one
func (h *SummaryHandler) RegenerateSummary(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	email, err := h.summaryService.RegenerateSummary(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to summarize")
	}

	return c.JSON(http.StatusOK, email)
}
