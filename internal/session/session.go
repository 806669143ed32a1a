// Package session keeps the per-user client state: the inbox store, the
// view filter, overlay flags and the assistant transcript.
package session

import (
	"sync"
	"time"

	"mailsage/internal/inbox"
	"mailsage/internal/model"
	"mailsage/internal/view"
)

type Session struct {
	UserID string
	Inbox  *inbox.Store

	mu     sync.Mutex
	ui     UIState
	chat   []model.ChatMessage
	typing bool
	now    func() time.Time
}

func New(userID string, pinned []string) *Session {
	s := &Session{
		UserID: userID,
		Inbox:  inbox.NewStore(pinned...),
		ui:     defaultUIState(),
		now:    time.Now,
	}
	s.chat = []model.ChatMessage{model.NewChatMessage(model.RoleAI, model.ChatGreeting)}
	return s
}

func (s *Session) UI() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// View returns the filtered, sorted messages for the current filter.
func (s *Session) View() []model.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() []model.Email {
	emails, pins := s.Inbox.Snapshot()
	return view.Apply(emails, pins, s.ui.Filter, s.now())
}

// Forget drops any UI reference to a message that left the list.
func (s *Session) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ui.ViewingID == id {
		s.ui.ViewingID = ""
	}
	if s.ui.ExpandedID == id {
		s.ui.ExpandedID = ""
	}
}

func (s *Session) Chat() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

func (s *Session) AppendChat(msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, msg)
}

// SetTyping marks whether an assistant reply is pending.
func (s *Session) SetTyping(typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = typing
}

func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// closeChat hides the panel and resets the transcript to the greeting.
func (s *Session) closeChat() {
	s.ui.ShowChat = false
	s.chat = []model.ChatMessage{model.NewChatMessage(model.RoleAI, model.ChatGreeting)}
}
