package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mailsage/internal/content"
	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/repository"
	"mailsage/internal/session"
)

type summaryService struct {
	sessions    *session.Manager
	summaryRepo repository.SummaryRepository
	ai          AIClient
	notifier    Notifier
	charLimit   int
	timeout     time.Duration
	logger      *logger.Logger
}

func NewSummaryService(
	sessions *session.Manager,
	summaryRepo repository.SummaryRepository,
	ai AIClient,
	notifier Notifier,
	charLimit int,
	timeout time.Duration,
	logger *logger.Logger,
) SummaryService {
	if charLimit <= 0 {
		charLimit = content.DefaultCharLimit
	}
	return &summaryService{
		sessions:    sessions,
		summaryRepo: summaryRepo,
		ai:          ai,
		notifier:    notifier,
		charLimit:   charLimit,
		timeout:     timeout,
		logger:      logger.With("summary"),
	}
}

// SummarizeText digests free text, truncated to the character limit.
func (s *summaryService) SummarizeText(ctx context.Context, text string) (string, error) {
	return s.summarize(ctx, content.Truncate(text, s.charLimit))
}

// ToggleSummary hides a visible summary, restores a hidden one, or asks the
// oracle for a new one. Only one request per message runs at a time.
func (s *summaryService) ToggleSummary(ctx context.Context, userID, messageID string) (model.Email, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return model.Email{}, err
	}
	email, ok := sess.Inbox.Email(messageID)
	if !ok {
		return model.Email{}, ErrNotFound
	}

	if email.HasSummary {
		sess.Inbox.ClearSummary(messageID)
		return s.current(sess, messageID)
	}
	if sess.Inbox.RestoreSummary(messageID) {
		return s.current(sess, messageID)
	}

	return s.generate(ctx, sess, email, false)
}

// RegenerateSummary drops the cached digest for the message and asks the
// oracle again, replacing any retained text.
func (s *summaryService) RegenerateSummary(ctx context.Context, userID, messageID string) (model.Email, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return model.Email{}, err
	}
	email, ok := sess.Inbox.Email(messageID)
	if !ok {
		return model.Email{}, ErrNotFound
	}
	return s.generate(ctx, sess, email, true)
}

func (s *summaryService) generate(ctx context.Context, sess *session.Session, email model.Email, fresh bool) (model.Email, error) {
	userID, messageID := sess.UserID, email.ID
	if !sess.Inbox.BeginSummarizing(messageID) {
		return model.Email{}, ErrAlreadySummarizing
	}
	defer sess.Inbox.EndSummarizing(messageID)

	if fresh {
		if err := s.summaryRepo.DeleteSummary(ctx, userID, messageID); err != nil {
			return model.Email{}, fmt.Errorf("failed to drop cached summary: %w", err)
		}
	}

	text, err := s.summaryFor(ctx, userID, email)
	if err != nil {
		s.logger.Error("Failed to summarize", messageID, ":", err)
		s.notify(userID, EventNotice, map[string]string{"message": "Failed to summarize"})
		return model.Email{}, err
	}

	// The message may have left the list while the oracle was working.
	if !sess.Inbox.SetSummary(messageID, text) {
		return model.Email{}, ErrNotFound
	}
	s.notify(userID, EventSummaryReady, map[string]string{"id": messageID, "summary": text})
	return s.current(sess, messageID)
}

// summaryFor consults the cache before calling the oracle.
func (s *summaryService) summaryFor(ctx context.Context, userID string, email model.Email) (string, error) {
	cached, err := s.summaryRepo.FindSummary(ctx, userID, email.ID)
	switch {
	case err == nil:
		s.logger.Debug("Summary cache hit for", email.ID)
		return cached.Summary, nil
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Warn("Summary cache lookup failed:", err)
	}

	text, err := content.ForAI(email.Body, s.charLimit)
	if err != nil || strings.TrimSpace(text) == "" {
		text = email.Snippet
	}

	summary, err := s.summarize(ctx, text)
	if err != nil {
		return "", err
	}

	record := &model.SummaryRecord{UserID: userID, MessageID: email.ID, Summary: summary, UpdatedAt: time.Now()}
	if err := s.summaryRepo.SaveSummary(ctx, record); err != nil {
		s.logger.Warn("Failed to cache summary for", email.ID, ":", err)
	}
	return summary, nil
}

func (s *summaryService) summarize(ctx context.Context, text string) (string, error) {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.ai.Summarize(callCtx, text)
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}
	return summary, nil
}

func (s *summaryService) current(sess *session.Session, messageID string) (model.Email, error) {
	email, ok := sess.Inbox.Email(messageID)
	if !ok {
		return model.Email{}, ErrNotFound
	}
	return email, nil
}

func (s *summaryService) notify(userID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastToUser(userID, event, data)
	}
}
