package gmail

import (
	"context"

	"mailsage/internal/model"
)

// MockGmailClient is a mock implementation of MailSource for testing
type MockGmailClient struct {
	FetchInboxFunc   func(ctx context.Context, user *model.User) ([]model.Email, error)
	ArchiveEmailFunc func(ctx context.Context, user *model.User, messageID string) error
	TrashEmailFunc   func(ctx context.Context, user *model.User, messageID string) error
}

func NewMockGmailClient() *MockGmailClient {
	return &MockGmailClient{}
}

func (m *MockGmailClient) FetchInbox(ctx context.Context, user *model.User) ([]model.Email, error) {
	if m.FetchInboxFunc != nil {
		return m.FetchInboxFunc(ctx, user)
	}

	// Default mock behavior: an empty inbox
	return []model.Email{}, nil
}

func (m *MockGmailClient) ArchiveEmail(ctx context.Context, user *model.User, messageID string) error {
	if m.ArchiveEmailFunc != nil {
		return m.ArchiveEmailFunc(ctx, user, messageID)
	}
	return nil
}

func (m *MockGmailClient) TrashEmail(ctx context.Context, user *model.User, messageID string) error {
	if m.TrashEmailFunc != nil {
		return m.TrashEmailFunc(ctx, user, messageID)
	}
	return nil
}
