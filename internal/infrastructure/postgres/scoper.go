package postgres

import (
	"context"
	"errors"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/infrastructure/recordstore"

	"github.com/jackc/pgx/v5"
)

// Scoper binds repositories to the service credential or to the request principal
type Scoper struct {
	client *recordstore.Client
}

// NewScoper creates a new scoper
func NewScoper(client *recordstore.Client) *Scoper {
	return &Scoper{client: client}
}

func (s *Scoper) Service() repository.Repositories {
	return bind(s.client.Service())
}

func (s *Scoper) Scope(ctx context.Context) (repository.Repositories, error) {
	principal := entity.PrincipalFromContext(ctx)
	if principal == nil {
		return repository.Repositories{}, apperror.ErrUnauthenticated
	}
	return bind(s.client.User(principal)), nil
}

// Ping reads one lifestyle row with the service credential. An empty table is healthy.
func (s *Scoper) Ping(ctx context.Context) error {
	return s.client.Service().Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		var id any
		err := q.QueryRow(ctx, "SELECT id FROM "+tableIdealLifestyles+" LIMIT 1").Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	})
}

func bind(db recordstore.Handle) repository.Repositories {
	return repository.Repositories{
		Goals:    NewGoalRepository(db),
		Todos:    NewTodoRepository(db),
		Profiles: NewProfileRepository(db),
	}
}
