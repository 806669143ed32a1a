package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"mailsage/internal/logger"
)

// Event is the JSON payload of one server-sent event.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time int64       `json:"time"`
}

// Client is one open event stream.
type Client struct {
	ID     string
	UserID string
	Events chan []byte
}

// SSEManager manages Server-Sent Event connections
type SSEManager struct {
	clients    map[string]map[string]*Client // userID -> clientID -> client
	clientsMux sync.RWMutex
	logger     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSSEManager creates a new SSE manager
func NewSSEManager(logger *logger.Logger) *SSEManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SSEManager{
		clients: make(map[string]map[string]*Client),
		logger:  logger.With("sse"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddClient registers a new stream for userID.
func (s *SSEManager) AddClient(userID string) *Client {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	if s.clients[userID] == nil {
		s.clients[userID] = make(map[string]*Client)
	}
	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Events: make(chan []byte, 16),
	}
	s.clients[userID][client.ID] = client

	s.logger.Info("Added SSE client for user:", userID, "total clients:", len(s.clients[userID]))
	return client
}

// RemoveClient unregisters client and closes its channel.
func (s *SSEManager) RemoveClient(client *Client) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	userClients, exists := s.clients[client.UserID]
	if !exists {
		return
	}
	if _, ok := userClients[client.ID]; !ok {
		return
	}
	delete(userClients, client.ID)
	close(client.Events)

	s.logger.Info("Removed SSE client for user:", client.UserID, "remaining clients:", len(userClients))
	if len(userClients) == 0 {
		delete(s.clients, client.UserID)
	}
}

// BroadcastToUser sends an event to every stream of userID. A stream whose
// buffer is full misses the event.
func (s *SSEManager) BroadcastToUser(userID string, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Time: time.Now().Unix()})
	if err != nil {
		s.logger.Error("Failed to marshal broadcast event:", err)
		return
	}

	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	for _, client := range s.clients[userID] {
		select {
		case client.Events <- payload:
		default:
			s.logger.Warn("Dropping", eventType, "event for slow client of user:", userID)
		}
	}
}

// Done is closed when the manager shuts down.
func (s *SSEManager) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close shuts down the SSE manager
func (s *SSEManager) Close() {
	s.cancel()

	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	for userID, userClients := range s.clients {
		for _, client := range userClients {
			close(client.Events)
		}
		delete(s.clients, userID)
	}
}

// GetUserConnectionCount returns the number of active connections for a user
func (s *SSEManager) GetUserConnectionCount(userID string) int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	return len(s.clients[userID])
}

// HasUserConnection checks if a user has active SSE connections
func (s *SSEManager) HasUserConnection(userID string) bool {
	return s.GetUserConnectionCount(userID) > 0
}

// ConnectedUsers lists users with at least one open stream.
func (s *SSEManager) ConnectedUsers() []string {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	users := make([]string, 0, len(s.clients))
	for userID := range s.clients {
		users = append(users, userID)
	}
	return users
}
