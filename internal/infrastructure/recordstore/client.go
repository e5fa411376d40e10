// Package recordstore runs row operations against the hosted Postgres database
// as either the signed-in user or the service role.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/pkg/jwt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Querier is the statement surface handed to an operation
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the part of pgxpool.Pool the client needs
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Handle runs operations under one credential
type Handle interface {
	Do(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

// TokenVerifier validates access tokens
type TokenVerifier interface {
	Validate(token string) (*jwt.Claims, error)
}

// SessionRefresher renews the access token of a stored session
type SessionRefresher interface {
	RefreshSession(ctx context.Context, sessionID string) (string, error)
}

// RetryObserver is notified about replays
type RetryObserver interface {
	ObserveRecordRetry(class string)
}

// Client owns the pool and the credentials used to act against it
type Client struct {
	pool       Pool
	verifier   TokenVerifier
	refresher  SessionRefresher
	serviceKey string
	budget     int
	observer   RetryObserver
	logger     *zap.Logger
}

// Options configures a Client
type Options struct {
	ServiceRoleKey string
	RetryBudget    int
	Refresher      SessionRefresher
	Observer       RetryObserver
	Logger         *zap.Logger
}

// NewClient creates a new record client
func NewClient(pool Pool, verifier TokenVerifier, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		pool:       pool,
		verifier:   verifier,
		refresher:  opts.Refresher,
		serviceKey: opts.ServiceRoleKey,
		budget:     opts.RetryBudget,
		observer:   opts.Observer,
		logger:     logger,
	}
}

// Service returns a handle acting with the service-role credential
func (c *Client) Service() Handle {
	return &handle{client: c, role: jwt.RoleService, token: c.serviceKey}
}

// User returns a handle acting as principal. Row-level security applies.
func (c *Client) User(principal *entity.Principal) Handle {
	return &handle{
		client:    c,
		role:      jwt.RoleAuthenticated,
		principal: principal,
		token:     principal.AccessToken,
	}
}

type handle struct {
	client    *Client
	role      string
	principal *entity.Principal

	mu    sync.Mutex
	token string
}

func (h *handle) Do(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	r := retrier{
		budget: h.client.budget,
		onRetry: func(class errorClass) {
			h.client.logger.Debug("replaying record operation", zap.String("class", class.String()))
			if h.client.observer != nil {
				h.client.observer.ObserveRecordRetry(class.String())
			}
		},
		onFail: func(class errorClass, err error) {
			h.client.logger.Warn("session refresh failed", zap.Error(err))
		},
	}
	if h.principal != nil && h.client.refresher != nil {
		r.refresh = h.refresh
	}

	return r.run(ctx, func(ctx context.Context) error {
		return h.attempt(ctx, fn)
	})
}

func (h *handle) refresh(ctx context.Context) error {
	token, err := h.client.refresher.RefreshSession(ctx, h.principal.SessionID.String())
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.token = token
	h.principal.AccessToken = token
	h.mu.Unlock()

	return nil
}

func (h *handle) currentToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *handle) claims() (string, error) {
	claims, err := h.client.verifier.Validate(h.currentToken())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", &apperror.DatabaseError{Code: apperror.CodeInvalidToken, Message: "JWT expired", Err: err}
		}
		return "", &apperror.DatabaseError{Message: "invalid access token", Err: err}
	}

	if h.principal != nil {
		if sub, err := claims.UserID(); err != nil || sub != h.principal.UserID {
			return "", &apperror.DatabaseError{Message: "access token does not belong to the session user"}
		}
	}

	return claims.JSON()
}

func (h *handle) attempt(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	claims, err := h.claims()
	if err != nil {
		return err
	}

	tx, err := h.client.pool.Begin(ctx)
	if err != nil {
		return wrapError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT set_config('role', $1, true), set_config('request.jwt.claims', $2, true)`,
		h.role, claims,
	); err != nil {
		return wrapError("failed to set request role", err)
	}

	if err := fn(ctx, tx); err != nil {
		return wrapError("record operation failed", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapError("failed to commit transaction", err)
	}

	return nil
}

func wrapError(msg string, err error) error {
	var dbErr *apperror.DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &apperror.DatabaseError{Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}

	return &apperror.DatabaseError{Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}
