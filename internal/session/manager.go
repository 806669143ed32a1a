package session

import (
	"context"
	"fmt"
	"sync"
)

// PinLoader returns the persisted pin set for a user.
type PinLoader func(ctx context.Context, userID string) ([]string, error)

// Manager owns one Session per user for the life of the process.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	loadPins PinLoader
}

func NewManager(loadPins PinLoader) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		loadPins: loadPins,
	}
}

// Get returns the user's session, creating it with the persisted pins on
// first use.
func (m *Manager) Get(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}

	var pinned []string
	if m.loadPins != nil {
		ids, err := m.loadPins(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pins: %w", err)
		}
		pinned = ids
	}

	s := New(userID, pinned)
	m.sessions[userID] = s
	return s, nil
}

// Drop forgets the user's session. The next Get starts fresh from the
// persisted pins.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
