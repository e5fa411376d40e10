package postgres

import (
	"context"
	"fmt"

	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/infrastructure/recordstore"

	"github.com/google/uuid"
)

type profileRepository struct {
	db recordstore.Handle
}

// NewProfileRepository creates a new user profile repository bound to a record handle
func NewProfileRepository(db recordstore.Handle) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM "USERS" WHERE id = $1)`

	var exists bool
	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, userID).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}

	return exists, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.UserProfile) error {
	if err := validateRow(tableUsers, profile); err != nil {
		return err
	}

	query := `
		INSERT INTO "USERS" (id, name, email, is_active)
		VALUES ($1, $2, $3, $4)
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		_, err := q.Exec(ctx, query, profile.ID, profile.Name, profile.Email, profile.IsActive)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}
