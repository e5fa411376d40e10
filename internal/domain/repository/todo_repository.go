package repository

import (
	"context"
	"time"

	"achivo/internal/domain/entity"

	"github.com/google/uuid"
)

// TodoRepository defines the interface for todo persistence
type TodoRepository interface {
	// CreateBatch inserts todos in one statement
	CreateBatch(ctx context.Context, todos []*entity.Todo) error

	// ListByUserID returns all todos of a user, newest first
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Todo, error)

	// SetCompleted sets the completed flag and updated_at. Returns false if no row matched.
	SetCompleted(ctx context.Context, todoID uuid.UUID, completed bool, at time.Time) (bool, error)

	// DeleteByWeeklyGoalID removes the todos created under a weekly goal
	DeleteByWeeklyGoalID(ctx context.Context, weeklyGoalID uuid.UUID) error
}
