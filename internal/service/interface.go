package service

import (
	"context"
	"time"

	"mailsage/internal/directive"
	"mailsage/internal/inbox"
	"mailsage/internal/model"
	"mailsage/internal/session"
)

// Event names pushed to connected clients.
const (
	EventPinChanged     = "pin_changed"
	EventSummaryReady   = "summary_ready"
	EventInboxRefreshed = "inbox_refreshed"
	EventNotice         = "notice"
)

type AuthService interface {
	GetOrCreateUser(ctx context.Context, googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	Logout(ctx context.Context, userID string)
}

type InboxService interface {
	Refresh(ctx context.Context, userID string) ([]model.Email, error)
	TogglePin(ctx context.Context, userID, messageID string) (bool, error)
	SetPinned(ctx context.Context, userID, messageID string, pinned bool) (bool, error)
	Archive(ctx context.Context, userID, messageID string) error
	Delete(ctx context.Context, userID, messageID string) error
}

type SummaryService interface {
	SummarizeText(ctx context.Context, text string) (string, error)
	ToggleSummary(ctx context.Context, userID, messageID string) (model.Email, error)
	RegenerateSummary(ctx context.Context, userID, messageID string) (model.Email, error)
}

type AssistantService interface {
	Chat(ctx context.Context, message string, emailContext []model.ContextEntry) (string, error)
	Ask(ctx context.Context, userID, message string) (*AssistantReply, error)
}

type StateService interface {
	Snapshot(ctx context.Context, userID string) (*StateSnapshot, error)
	Dispatch(ctx context.Context, userID string, actions ...session.Action) (*StateSnapshot, error)
}

// AssistantReply is the cleaned reply and the directive it carried.
type AssistantReply struct {
	Reply  string              `json:"reply"`
	Action directive.Directive `json:"action"`
}

// StateSnapshot is what a client needs to redraw a session.
type StateSnapshot struct {
	UI     session.UIState     `json:"ui"`
	Emails []model.Email       `json:"emails"`
	Chat   []model.ChatMessage `json:"chat"`
	Typing bool                `json:"typing"`
	Fetch  inbox.FetchStatus   `json:"fetch"`
	Pinned []string            `json:"pinned"`
}

// MailSource reads and modifies a user's mailbox.
type MailSource interface {
	FetchInbox(ctx context.Context, user *model.User) ([]model.Email, error)
	ArchiveEmail(ctx context.Context, user *model.User, messageID string) error
	TrashEmail(ctx context.Context, user *model.User, messageID string) error
}

// AIClient is the language model behind summaries and the assistant.
type AIClient interface {
	Summarize(ctx context.Context, text string) (string, error)
	Chat(ctx context.Context, message string, emails []model.ContextEntry) (string, error)
}

// Notifier pushes an event to every open connection of a user.
type Notifier interface {
	BroadcastToUser(userID string, eventType string, data interface{})
}
