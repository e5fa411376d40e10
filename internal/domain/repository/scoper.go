package repository

import "context"

// Repositories bundles the repositories bound to one access scope
type Repositories struct {
	Goals    GoalRepository
	Todos    TodoRepository
	Profiles ProfileRepository
}

// Scoper hands out repositories bound to a credential
type Scoper interface {
	// Service returns repositories running with the service credential
	Service() Repositories

	// Scope returns repositories acting as the principal carried by ctx.
	// Fails with apperror.ErrUnauthenticated when ctx carries none.
	Scope(ctx context.Context) (Repositories, error)
}
