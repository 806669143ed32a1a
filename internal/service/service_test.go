package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mailsage/internal/ai"
	"mailsage/internal/gmail"
	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/repository"
	"mailsage/internal/repository/memory"
	"mailsage/internal/service"
	"mailsage/internal/session"
)

type recordedEvent struct {
	UserID string
	Type   string
	Data   interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) BroadcastToUser(userID string, eventType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{userID, eventType, data})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repos     *repository.Repositories
	sessions  *session.Manager
	mail      *gmail.MockGmailClient
	ai        *ai.MockAIClient
	events    *recorder
	user      *model.User
	inbox     service.InboxService
	summary   service.SummaryService
	assistant service.AssistantService
	state     service.StateService
}

func newFixture(t *testing.T, writeback bool) *fixture {
	t.Helper()
	log := logger.NewWithWriter(io.Discard)
	f := &fixture{
		repos:  memory.New(),
		mail:   gmail.NewMockGmailClient(),
		ai:     ai.NewMockAIClient(),
		events: &recorder{},
	}
	f.sessions = session.NewManager(f.repos.Pins.ListPins)

	f.user = model.NewUser("g-1", "ana@example.com", "Ana", "access", "refresh", time.Time{})
	require.NoError(t, f.repos.Users.Create(context.Background(), f.user))

	f.mail.FetchInboxFunc = func(ctx context.Context, user *model.User) ([]model.Email, error) {
		return sampleEmails(), nil
	}

	f.inbox = service.NewInboxService(f.sessions, f.repos.Users, f.repos.Pins, f.mail, f.events, time.Second, writeback, log)
	f.summary = service.NewSummaryService(f.sessions, f.repos.Summaries, f.ai, f.events, 20, time.Second, log)
	f.assistant = service.NewAssistantService(f.sessions, f.inbox, f.ai, time.Second, log)
	f.state = service.NewStateService(f.sessions)
	return f
}

func sampleEmails() []model.Email {
	now := time.Now()
	return []model.Email{
		{
			ID:        "m1",
			Sender:    model.Sender{Name: "Billing", Email: "billing@example.com"},
			Subject:   "Invoice ready",
			Snippet:   "Your invoice",
			Body:      "<p>Your invoice is <a href=\"https://pay.example.com\">ready</a></p>",
			Timestamp: now.Add(-time.Hour).UnixMilli(),
		},
		{
			ID:        "m2",
			Sender:    model.Sender{Name: "Capcom", Email: "news@capcom.com"},
			Subject:   "Newsletter",
			Snippet:   "New games",
			Body:      "New games this week",
			Timestamp: now.Add(-2 * time.Hour).UnixMilli(),
		},
	}
}

// loaded refreshes the fixture user's inbox.
func (f *fixture) loaded(t *testing.T) *fixture {
	t.Helper()
	_, err := f.inbox.Refresh(context.Background(), f.user.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) session(t *testing.T) *session.Session {
	t.Helper()
	sess, err := f.sessions.Get(context.Background(), f.user.ID)
	require.NoError(t, err)
	return sess
}
