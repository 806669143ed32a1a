package model

import "time"

// SummaryRecord caches an oracle digest for one message of one user.
type SummaryRecord struct {
	UserID    string    `json:"user_id"`
	MessageID string    `json:"message_id"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}
