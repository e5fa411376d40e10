package repository

import (
	"context"

	"achivo/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileRepository defines the interface for user profile persistence
type ProfileRepository interface {
	// Exists checks if a profile row exists for the user
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)

	// Create inserts a new profile
	Create(ctx context.Context, profile *entity.UserProfile) error
}
