package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/repository"
	"mailsage/internal/session"
)

const (
	noticeFetchFailed    = "Failed to load emails"
	noticeNotSignedIn    = "Not Authenticated"
	noticeWritebackError = "Could not update the message in Gmail"
)

type inboxService struct {
	sessions  *session.Manager
	userRepo  repository.UserRepository
	pinRepo   repository.PinRepository
	mail      MailSource
	notifier  Notifier
	timeout   time.Duration
	writeback bool
	logger    *logger.Logger
}

func NewInboxService(
	sessions *session.Manager,
	userRepo repository.UserRepository,
	pinRepo repository.PinRepository,
	mail MailSource,
	notifier Notifier,
	timeout time.Duration,
	writeback bool,
	logger *logger.Logger,
) InboxService {
	return &inboxService{
		sessions:  sessions,
		userRepo:  userRepo,
		pinRepo:   pinRepo,
		mail:      mail,
		notifier:  notifier,
		timeout:   timeout,
		writeback: writeback,
		logger:    logger.With("inbox"),
	}
}

// Refresh replaces the session's list with the current inbox. On failure the
// previous list stays and a notice is recorded.
func (s *inboxService) Refresh(ctx context.Context, userID string) ([]model.Email, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		sess.Inbox.FetchFailed(noticeNotSignedIn)
		return nil, err
	}

	sess.Inbox.BeginFetch()
	fetchCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	fetched, err := s.mail.FetchInbox(fetchCtx, user)
	if err != nil {
		notice := noticeFetchFailed
		if errors.Is(err, ErrAuthentication) {
			notice = noticeNotSignedIn
		}
		sess.Inbox.FetchFailed(notice)
		s.notify(userID, EventNotice, map[string]string{"message": notice})
		s.logger.Error("Failed to fetch inbox for user", userID, ":", err)
		return nil, fmt.Errorf("failed to fetch inbox: %w", err)
	}

	emails := sess.Inbox.ApplyFetch(fetched)
	s.logger.Info("Fetched", len(emails), "emails for user", userID)
	s.notify(userID, EventInboxRefreshed, map[string]int{"count": len(emails)})
	return emails, nil
}

func (s *inboxService) TogglePin(ctx context.Context, userID, messageID string) (bool, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	pinned := sess.Inbox.TogglePin(messageID)
	if err := s.persistPin(ctx, sess, messageID, pinned); err != nil {
		return !pinned, err
	}
	return pinned, nil
}

// SetPinned forces membership and reports whether it changed.
func (s *inboxService) SetPinned(ctx context.Context, userID, messageID string, pinned bool) (bool, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !sess.Inbox.SetPinned(messageID, pinned) {
		return false, nil
	}
	if err := s.persistPin(ctx, sess, messageID, pinned); err != nil {
		return false, err
	}
	return true, nil
}

// persistPin writes the new membership through, reverting the session on
// failure so memory and storage agree.
func (s *inboxService) persistPin(ctx context.Context, sess *session.Session, messageID string, pinned bool) error {
	if err := s.pinRepo.SetPin(ctx, sess.UserID, messageID, pinned); err != nil {
		sess.Inbox.SetPinned(messageID, !pinned)
		s.logger.Error("Failed to persist pin", messageID, ":", err)
		return fmt.Errorf("failed to save pin: %w", err)
	}
	s.notify(sess.UserID, EventPinChanged, map[string]interface{}{"id": messageID, "pinned": pinned})
	return nil
}

func (s *inboxService) Archive(ctx context.Context, userID, messageID string) error {
	return s.remove(ctx, userID, messageID, "archive", s.mail.ArchiveEmail)
}

func (s *inboxService) Delete(ctx context.Context, userID, messageID string) error {
	return s.remove(ctx, userID, messageID, "trash", s.mail.TrashEmail)
}

// remove drops the message from the session. With writeback enabled the
// mailbox is updated too; the user must resolve before anything is removed,
// and a Gmail failure after that is reported as a notice only.
func (s *inboxService) remove(ctx context.Context, userID, messageID, verb string,
	upstream func(context.Context, *model.User, string) error) error {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}

	var user *model.User
	if s.writeback {
		if user, err = s.user(ctx, userID); err != nil {
			return err
		}
	}

	if !sess.Inbox.RemoveByID(messageID) {
		return ErrNotFound
	}
	sess.Forget(messageID)

	if user == nil {
		return nil
	}
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := upstream(callCtx, user, messageID); err != nil {
		s.logger.Warnf("Failed to %s %s in Gmail: %v", verb, messageID, err)
		s.notify(userID, EventNotice, map[string]string{"message": noticeWritebackError})
	}
	return nil
}

func (s *inboxService) user(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.AccessToken == "" && user.RefreshToken == "" {
		return nil, ErrAuthentication
	}
	return user, nil
}

func (s *inboxService) notify(userID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastToUser(userID, event, data)
	}
}

// withTimeout bounds ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
