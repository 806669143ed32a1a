package repository

import (
	"context"
	"errors"

	"mailsage/internal/model"
)

// ErrNotFound is returned by Find* methods when no row matches.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// PinRepository persists each user's pin set.
type PinRepository interface {
	ListPins(ctx context.Context, userID string) ([]string, error)
	SetPin(ctx context.Context, userID, messageID string, pinned bool) error
}

// SummaryRepository caches oracle digests so a message is summarized once.
type SummaryRepository interface {
	SaveSummary(ctx context.Context, record *model.SummaryRecord) error
	FindSummary(ctx context.Context, userID, messageID string) (*model.SummaryRecord, error)
	DeleteSummary(ctx context.Context, userID, messageID string) error
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Users     UserRepository
	Pins      PinRepository
	Summaries SummaryRepository
	Close     func() error
}
