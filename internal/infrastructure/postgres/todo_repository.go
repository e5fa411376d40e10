package postgres

import (
	"context"
	"fmt"
	"time"

	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/infrastructure/recordstore"

	"github.com/google/uuid"
)

type todoRepository struct {
	db recordstore.Handle
}

// NewTodoRepository creates a new todo repository bound to a record handle
func NewTodoRepository(db recordstore.Handle) repository.TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) CreateBatch(ctx context.Context, todos []*entity.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(todos))
	weeklyIDs := make([]string, 0, len(todos))
	titles := make([]string, 0, len(todos))
	for _, todo := range todos {
		if err := validateRow(tableTodos, todo); err != nil {
			return err
		}
		userIDs = append(userIDs, todo.UserID.String())
		weeklyIDs = append(weeklyIDs, todo.WeeklyGoalID.String())
		titles = append(titles, todo.Title)
	}

	query := `
		INSERT INTO "TODOS" (user_id, weekly_goal_id, title)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::text[])
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		_, err := q.Exec(ctx, query, userIDs, weeklyIDs, titles)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create todos: %w", err)
	}

	return nil
}

func (r *todoRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Todo, error) {
	query := `
		SELECT id, user_id, weekly_goal_id, title, is_completed, priority, deadline, created_at, updated_at
		FROM "TODOS"
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var todos []*entity.Todo
	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		rows, err := q.Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		todos = todos[:0]
		for rows.Next() {
			todo := &entity.Todo{}
			err := rows.Scan(
				&todo.ID, &todo.UserID, &todo.WeeklyGoalID, &todo.Title, &todo.IsCompleted,
				&todo.Priority, &todo.Deadline, &todo.CreatedAt, &todo.UpdatedAt,
			)
			if err != nil {
				return err
			}
			todos = append(todos, todo)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, nil
}

func (r *todoRepository) SetCompleted(ctx context.Context, todoID uuid.UUID, completed bool, at time.Time) (bool, error) {
	query := `
		UPDATE "TODOS"
		SET is_completed = $2, updated_at = $3
		WHERE id = $1
	`

	var affected int64
	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		tag, err := q.Exec(ctx, query, todoID, completed, at)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update todo: %w", err)
	}

	return affected > 0, nil
}

func (r *todoRepository) DeleteByWeeklyGoalID(ctx context.Context, weeklyGoalID uuid.UUID) error {
	query := `DELETE FROM "TODOS" WHERE weekly_goal_id = $1`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		_, err := q.Exec(ctx, query, weeklyGoalID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete todos: %w", err)
	}

	return nil
}
