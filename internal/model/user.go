package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated Google account. Tokens never leave the server.
type User struct {
	ID           string    `json:"id"`
	GoogleID     string    `json:"google_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewUser(googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New().String(),
		GoogleID:     googleID,
		Email:        email,
		Name:         name,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenExpiry:  tokenExpiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasSession reports whether the user holds an access token that has not
// expired. A zero expiry is treated as non-expiring.
func (u *User) HasSession(now time.Time) bool {
	if u == nil || u.AccessToken == "" {
		return false
	}
	return u.TokenExpiry.IsZero() || now.Before(u.TokenExpiry)
}
