package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailsage/internal/directive"
	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/session"
	"mailsage/internal/view"
)

// ReplyUnavailable is appended to the transcript when the oracle fails.
const ReplyUnavailable = "Error: AI Service Unavailable."

type assistantService struct {
	sessions *session.Manager
	inbox    InboxService
	ai       AIClient
	timeout  time.Duration
	logger   *logger.Logger
}

func NewAssistantService(
	sessions *session.Manager,
	inbox InboxService,
	ai AIClient,
	timeout time.Duration,
	logger *logger.Logger,
) AssistantService {
	return &assistantService{
		sessions: sessions,
		inbox:    inbox,
		ai:       ai,
		timeout:  timeout,
		logger:   logger.With("assistant"),
	}
}

// Chat passes message and context straight to the oracle.
func (s *assistantService) Chat(ctx context.Context, message string, emailContext []model.ContextEntry) (string, error) {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.ai.Chat(callCtx, message, emailContext)
	if err != nil {
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	return reply, nil
}

// Ask runs one assistant turn against the user's current view and applies
// the first directive in the reply.
func (s *assistantService) Ask(ctx context.Context, userID, message string) (*AssistantReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.AppendChat(model.NewChatMessage(model.RoleUser, message))
	sess.SetTyping(true)
	defer sess.SetTyping(false)

	reply, err := s.Chat(ctx, message, view.Context(sess.View()))
	if err != nil {
		s.logger.Error("Assistant reply failed for user", userID, ":", err)
		sess.AppendChat(model.NewChatMessage(model.RoleAI, ReplyUnavailable))
		return nil, err
	}

	cleaned, d := directive.Handle(reply, pinFunc(func(id string, pinned bool) bool {
		changed, err := s.inbox.SetPinned(ctx, userID, id, pinned)
		if err != nil {
			s.logger.Warn("Directive pin failed:", err)
		}
		return changed
	}))
	if d.Kind == directive.KindUnknown {
		s.logger.Warnf("Ignoring unknown directive %q", d.Code)
	}

	sess.AppendChat(model.NewChatMessage(model.RoleAI, cleaned))
	return &AssistantReply{Reply: cleaned, Action: d}, nil
}

type pinFunc func(id string, pinned bool) bool

func (f pinFunc) SetPinned(id string, pinned bool) bool {
	return f(id, pinned)
}
