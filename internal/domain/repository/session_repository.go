package repository

import (
	"context"
	"time"

	"achivo/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for browser session storage
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *entity.Session) error

	// GetByID retrieves a session. Returns apperror.ErrNotFound when absent or expired.
	GetByID(ctx context.Context, sessionID string) (*entity.Session, error)

	// Update overwrites a session, keeping it until expiresAt
	Update(ctx context.Context, session *entity.Session) error

	// Delete removes a session
	Delete(ctx context.Context, sessionID string) error

	// DeleteAllByUserID removes every session of a user
	DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error
}

// OAuthStateRepository keeps PKCE verifiers between login and callback
type OAuthStateRepository interface {
	// GenerateState creates a random state value
	GenerateState() (string, error)

	// StoreVerifier saves the verifier under state for ttl
	StoreVerifier(ctx context.Context, state, verifier string, ttl time.Duration) error

	// ConsumeVerifier returns and removes the verifier stored under state
	ConsumeVerifier(ctx context.Context, state string) (string, error)
}
