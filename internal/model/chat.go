package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// ChatGreeting seeds every fresh chat transcript.
const ChatGreeting = "I am ready to help you parse your inbox. Ask me anything about your emails."

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewChatMessage(role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
