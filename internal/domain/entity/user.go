package entity

import (
	"strings"

	"github.com/google/uuid"
)

const defaultProfileName = "User"

// UserProfile is the application's row for an authenticated user
type UserProfile struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Email    *string   `json:"email,omitempty"`
	IsActive bool      `json:"is_active"`
}

// AuthUser is the identity returned by the auth server after a code exchange
type AuthUser struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// DisplayName derives a profile name from metadata, then the email local part
func (u *AuthUser) DisplayName() string {
	for _, key := range []string{"name", "full_name"} {
		if v, ok := u.Metadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	return defaultProfileName
}

// NewUserProfile builds the profile row provisioned on first sign-in
func NewUserProfile(u *AuthUser) *UserProfile {
	profile := &UserProfile{
		ID:       u.ID,
		Name:     u.DisplayName(),
		IsActive: true,
	}
	if u.Email != "" {
		email := u.Email
		profile.Email = &email
	}
	return profile
}

// AuthTokens is a token grant issued by the auth server
type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	User         *AuthUser `json:"user"`
}
