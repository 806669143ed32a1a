package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mailsage/internal/sse"
)

type EventsHandler struct {
	sseManager *sse.SSEManager
	logger     echo.Logger
}

func NewEventsHandler(sseManager *sse.SSEManager, logger echo.Logger) *EventsHandler {
	return &EventsHandler{
		sseManager: sseManager,
		logger:     logger,
	}
}

// Stream provides Server-Sent Events for pin, summary and inbox updates
func (h *EventsHandler) Stream(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	client := h.sseManager.AddClient(user.ID)
	defer h.sseManager.RemoveClient(client)

	hello, _ := json.Marshal(sse.Event{
		Type: "connection",
		Data: map[string]string{"userId": user.ID},
		Time: time.Now().Unix(),
	})
	fmt.Fprintf(res, "data: %s\n\n", hello)
	res.Flush()

	for {
		select {
		case payload, open := <-client.Events:
			if !open {
				return nil
			}
			fmt.Fprintf(res, "data: %s\n\n", payload)
			res.Flush()
		case <-c.Request().Context().Done():
			return nil
		case <-h.sseManager.Done():
			return nil
		}
	}
}
