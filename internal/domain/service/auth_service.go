package service

import (
	"context"

	"achivo/internal/domain/entity"
)

// LoginRedirect is where the browser is sent to start sign-in
type LoginRedirect struct {
	URL   string
	State string
}

// AuthService defines the interface for sign-in and session handling
type AuthService interface {
	// BeginLogin prepares a PKCE flow for provider and returns the authorize URL
	BeginLogin(ctx context.Context, provider string) (*LoginRedirect, error)

	// CompleteLogin exchanges an authorization code and creates a session
	CompleteLogin(ctx context.Context, code, state string) (*entity.Session, error)

	// ResolveSession turns a session id into the request principal
	ResolveSession(ctx context.Context, sessionID string) (*entity.Principal, error)

	// Logout signs the session out of the auth server and removes it
	Logout(ctx context.Context, sessionID string) error
}

// SessionRefresher renews an expired access token of a stored session
type SessionRefresher interface {
	// RefreshSession returns the new access token
	RefreshSession(ctx context.Context, sessionID string) (string, error)
}
