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

type authService struct {
	userRepo repository.UserRepository
	sessions *session.Manager
	logger   *logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, sessions *session.Manager, logger *logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger.With("auth"),
	}
}

func (s *authService) GetOrCreateUser(ctx context.Context, googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) (*model.User, error) {
	existingUser, err := s.userRepo.FindByGoogleID(ctx, googleID)
	if errors.Is(err, repository.ErrNotFound) {
		newUser := model.NewUser(googleID, email, name, accessToken, refreshToken, tokenExpiry)
		if err := s.userRepo.Create(ctx, newUser); err != nil {
			s.logger.Error("Failed to create user:", err)
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("Created new user:", newUser.ID)
		return newUser, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	existingUser.Email = email
	existingUser.Name = name
	if accessToken != "" {
		existingUser.AccessToken = accessToken
		existingUser.TokenExpiry = tokenExpiry
	}
	// Google only sends a refresh token on first consent.
	if refreshToken != "" {
		existingUser.RefreshToken = refreshToken
	}

	if err := s.userRepo.Update(ctx, existingUser); err != nil {
		s.logger.Error("Failed to update user:", err)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("Updated existing user:", existingUser.ID)
	return existingUser, nil
}

// GetUser returns ErrAuthentication when the id no longer maps to a user.
func (s *authService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Logout discards the in-memory inbox and UI state. Pins and cached
// summaries stay in the repositories.
func (s *authService) Logout(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	s.sessions.Drop(userID)
	s.logger.Info("Logged out user:", userID)
}
