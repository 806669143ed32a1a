package ai

import (
	"context"
	"strconv"
	"strings"

	"mailsage/internal/model"
)

// MockAIClient is a mock implementation of AIClient for testing
type MockAIClient struct {
	SummarizeFunc func(ctx context.Context, text string) (string, error)
	ChatFunc      func(ctx context.Context, message string, emails []model.ContextEntry) (string, error)
}

func NewMockAIClient() *MockAIClient {
	return &MockAIClient{}
}

func (m *MockAIClient) Summarize(ctx context.Context, text string) (string, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}

	// Default mock behavior: echo the text with an empty action list
	return strings.TrimSpace(text) + "\n\nAction Items\n0 action items", nil
}

func (m *MockAIClient) Chat(ctx context.Context, message string, emails []model.ContextEntry) (string, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, message, emails)
	}
	return "I can see " + strconv.Itoa(len(emails)) + " emails.", nil
}
