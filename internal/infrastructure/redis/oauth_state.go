package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const oauthStatePrefix = "oauth:state:"

// OAuthStateStorage keeps PKCE code verifiers between login and callback
type OAuthStateStorage struct {
	client redis.Cmdable
}

var _ repository.OAuthStateRepository = (*OAuthStateStorage)(nil)

// NewOAuthStateStorage creates a new OAuth state storage
func NewOAuthStateStorage(client redis.Cmdable) *OAuthStateStorage {
	return &OAuthStateStorage{
		client: client,
	}
}

// GenerateState generates a new random state value
func (s *OAuthStateStorage) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// StoreVerifier stores the code verifier under state
func (s *OAuthStateStorage) StoreVerifier(ctx context.Context, state, verifier string, ttl time.Duration) error {
	err := s.client.Set(ctx, oauthStatePrefix+state, verifier, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// ConsumeVerifier returns the verifier stored under state and deletes it
func (s *OAuthStateStorage) ConsumeVerifier(ctx context.Context, state string) (string, error) {
	verifier, err := s.client.GetDel(ctx, oauthStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get oauth state: %w", err)
	}
	return verifier, nil
}
