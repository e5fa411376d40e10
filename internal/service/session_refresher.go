package service

import (
	"context"
	"errors"
	"fmt"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/domain/service"

	"golang.org/x/sync/singleflight"
)

// AuthServer is the subset of the auth server API the services use
type AuthServer interface {
	AuthorizeURL(provider, redirectTo, challenge string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*entity.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.AuthTokens, error)
	Logout(ctx context.Context, accessToken string) error
}

type sessionRefresher struct {
	sessions repository.SessionRepository
	auth     AuthServer
	group    singleflight.Group
}

// NewSessionRefresher creates a refresher. Concurrent refreshes of one session share a single call.
func NewSessionRefresher(sessions repository.SessionRepository, auth AuthServer) service.SessionRefresher {
	return &sessionRefresher{sessions: sessions, auth: auth}
}

func (r *sessionRefresher) RefreshSession(ctx context.Context, sessionID string) (string, error) {
	// The shared call is detached from the cancellation of whichever caller started it.
	ctx = context.WithoutCancel(ctx)

	token, err, _ := r.group.Do(sessionID, func() (interface{}, error) {
		session, err := r.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return "", fmt.Errorf("failed to load session: %w", err)
		}

		tokens, err := r.auth.Refresh(ctx, session.RefreshToken)
		if err != nil {
			err = fmt.Errorf("failed to refresh session: %w", err)
			if refreshRejected(err) {
				if revokeErr := r.sessions.DeleteAllByUserID(ctx, session.UserID); revokeErr != nil {
					return "", errors.Join(err, fmt.Errorf("failed to revoke sessions: %w", revokeErr))
				}
			}
			return "", err
		}

		session.AccessToken = tokens.AccessToken
		if tokens.RefreshToken != "" {
			session.RefreshToken = tokens.RefreshToken
		}
		session.UpdateActivity()

		if err := r.sessions.Update(ctx, session); err != nil {
			return "", fmt.Errorf("failed to store refreshed session: %w", err)
		}

		return session.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

// refreshRejected reports whether the auth server refused the refresh token itself.
// A revoked or reused refresh token invalidates every session of the user.
func refreshRejected(err error) bool {
	var upstream *apperror.UpstreamError
	if !errors.As(err, &upstream) {
		return false
	}
	return upstream.StatusCode >= 400 && upstream.StatusCode < 500
}
