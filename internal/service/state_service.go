package service

import (
	"context"

	"mailsage/internal/session"
)

type stateService struct {
	sessions *session.Manager
}

func NewStateService(sessions *session.Manager) StateService {
	return &stateService{sessions: sessions}
}

func (s *stateService) Snapshot(ctx context.Context, userID string) (*StateSnapshot, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// Dispatch applies actions in order, or none of them when one is invalid.
func (s *stateService) Dispatch(ctx context.Context, userID string, actions ...session.Action) (*StateSnapshot, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Dispatch(actions...); err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

func snapshot(sess *session.Session) *StateSnapshot {
	return &StateSnapshot{
		UI:     sess.UI(),
		Emails: sess.View(),
		Chat:   sess.Chat(),
		Typing: sess.Typing(),
		Fetch:  sess.Inbox.Status(),
		Pinned: sess.Inbox.Pins().IDs(),
	}
}
