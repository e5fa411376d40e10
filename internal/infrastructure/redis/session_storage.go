package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStorage handles browser session storage in Redis
type SessionStorage struct {
	client     redis.Cmdable
	sessionTTL time.Duration
}

var _ repository.SessionRepository = (*SessionStorage)(nil)

// NewSessionStorage creates a new session storage
func NewSessionStorage(client redis.Cmdable, sessionTTL time.Duration) *SessionStorage {
	return &SessionStorage{
		client:     client,
		sessionTTL: sessionTTL,
	}
}

// sessionKey generates Redis key for session
func (s *SessionStorage) sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// userSessionsKey generates Redis key for user sessions set
func (s *SessionStorage) userSessionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:sessions", userID.String())
}

// Create stores a new session and indexes it under its user
func (s *SessionStorage) Create(ctx context.Context, session *entity.Session) error {
	if err := s.put(ctx, session); err != nil {
		return err
	}

	userSessionsKey := s.userSessionsKey(session.UserID)
	if err := s.client.SAdd(ctx, userSessionsKey, session.ID.String()).Err(); err != nil {
		return fmt.Errorf("failed to add session to user set: %w", err)
	}

	if err := s.client.Expire(ctx, userSessionsKey, s.sessionTTL+24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set expiration on user sessions: %w", err)
	}

	return nil
}

// Update overwrites a session, keeping its expiry
func (s *SessionStorage) Update(ctx context.Context, session *entity.Session) error {
	return s.put(ctx, session)
}

func (s *SessionStorage) put(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.sessionKey(session.ID.String()), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (s *SessionStorage) GetByID(ctx context.Context, sessionID string) (*entity.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		return nil, apperror.ErrNotFound
	}

	return &session, nil
}

// Delete removes a session from Redis
func (s *SessionStorage) Delete(ctx context.Context, sessionID string) error {
	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := s.client.SRem(ctx, s.userSessionsKey(session.UserID), sessionID).Err(); err != nil {
		return fmt.Errorf("failed to remove session from user set: %w", err)
	}

	return nil
}

// DeleteAllByUserID removes all sessions for a user
func (s *SessionStorage) DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error {
	userSessionsKey := s.userSessionsKey(userID)
	sessionIDs, err := s.client.SMembers(ctx, userSessionsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}

	for _, sessionID := range sessionIDs {
		if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}

	if err := s.client.Del(ctx, userSessionsKey).Err(); err != nil {
		return fmt.Errorf("failed to delete user sessions set: %w", err)
	}

	return nil
}
