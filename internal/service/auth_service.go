package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/domain/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const callbackPath = "/api/auth/callback"

// AuthConfig configures sign-in
type AuthConfig struct {
	SiteURL    string
	SessionTTL time.Duration
	StateTTL   time.Duration
}

type authService struct {
	auth     AuthServer
	sessions repository.SessionRepository
	states   repository.OAuthStateRepository
	scoper   repository.Scoper
	cfg      AuthConfig
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	auth AuthServer,
	sessions repository.SessionRepository,
	states repository.OAuthStateRepository,
	scoper repository.Scoper,
	cfg AuthConfig,
	logger *zap.Logger,
) service.AuthService {
	return &authService{
		auth:     auth,
		sessions: sessions,
		states:   states,
		scoper:   scoper,
		cfg:      cfg,
		logger:   logger,
	}
}

// newPKCE returns a random code verifier and its S256 challenge
func newPKCE() (verifier, challenge string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate code verifier: %w", err)
	}
	verifier = base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

func (s *authService) BeginLogin(ctx context.Context, provider string) (*service.LoginRedirect, error) {
	if strings.TrimSpace(provider) == "" {
		return nil, apperror.NewValidationError("provider", "is required")
	}

	verifier, challenge, err := newPKCE()
	if err != nil {
		return nil, err
	}

	state, err := s.states.GenerateState()
	if err != nil {
		return nil, err
	}

	if err := s.states.StoreVerifier(ctx, state, verifier, s.cfg.StateTTL); err != nil {
		return nil, err
	}

	redirectTo := strings.TrimRight(s.cfg.SiteURL, "/") + callbackPath + "?state=" + state

	return &service.LoginRedirect{
		URL:   s.auth.AuthorizeURL(provider, redirectTo, challenge),
		State: state,
	}, nil
}

func (s *authService) CompleteLogin(ctx context.Context, code, state string) (*entity.Session, error) {
	verifier, err := s.states.ConsumeVerifier(ctx, state)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown or expired state", apperror.ErrAuthExchange)
		}
		return nil, err
	}

	tokens, err := s.auth.ExchangeCode(ctx, code, verifier)
	if err != nil {
		var upstream *apperror.UpstreamError
		if errors.As(err, &upstream) {
			return nil, fmt.Errorf("%w: %w", apperror.ErrAuthExchange, err)
		}
		return nil, fmt.Errorf("%w: %w", apperror.ErrAuthUnavailable, err)
	}

	if tokens.User == nil || tokens.User.ID == uuid.Nil {
		return nil, apperror.ErrNoUser
	}

	now := time.Now()
	session := &entity.Session{
		ID:             uuid.New(),
		UserID:         tokens.User.ID,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.provisionProfile(ctx, session, tokens.User)

	s.logger.Info("user signed in",
		zap.String("user_id", session.UserID.String()),
		zap.String("session_id", session.ID.String()),
	)

	return session, nil
}

// provisionProfile creates the USERS row on first sign-in. Failures do not block sign-in.
func (s *authService) provisionProfile(ctx context.Context, session *entity.Session, user *entity.AuthUser) {
	ctx = entity.ContextWithPrincipal(ctx, &entity.Principal{
		UserID:      session.UserID,
		SessionID:   session.ID,
		AccessToken: session.AccessToken,
	})

	repos, err := s.scoper.Scope(ctx)
	if err != nil {
		s.logger.Warn("profile provisioning skipped", zap.Error(err))
		return
	}

	exists, err := repos.Profiles.Exists(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to check profile", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}
	if exists {
		return
	}

	if err := repos.Profiles.Create(ctx, entity.NewUserProfile(user)); err != nil {
		s.logger.Warn("failed to provision profile", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}

	s.logger.Info("profile provisioned", zap.String("user_id", user.ID.String()))
}

func (s *authService) ResolveSession(ctx context.Context, sessionID string) (*entity.Principal, error) {
	if sessionID == "" {
		return nil, apperror.ErrUnauthenticated
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrUnauthenticated
		}
		return nil, err
	}

	return &entity.Principal{
		UserID:      session.UserID,
		SessionID:   session.ID,
		AccessToken: session.AccessToken,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.auth.Logout(ctx, session.AccessToken); err != nil {
		s.logger.Warn("auth server sign-out failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("user signed out", zap.String("user_id", session.UserID.String()))
	return nil
}
