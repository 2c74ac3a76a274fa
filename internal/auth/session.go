package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionTTL is fixed from issuance; it slides only through explicit
// re-login, which issues a fresh token.
const SessionTTL = 24 * time.Hour

const sessionKeyPrefix = "session:"

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists AuthContext values in Redis keyed by opaque tokens.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Create issues a new session token for the given identity.
func (s *SessionStore) Create(ctx context.Context, actor AuthContext) (string, error) {
	token := uuid.New().String()

	data, err := json.Marshal(actor)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+token, data, SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Get resolves a token to its identity. Expired or unknown tokens return
// ErrSessionNotFound; the TTL is not refreshed on reads.
func (s *SessionStore) Get(ctx context.Context, token string) (AuthContext, error) {
	if token == "" {
		return Anonymous, ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return Anonymous, ErrSessionNotFound
		}
		return Anonymous, fmt.Errorf("failed to load session: %w", err)
	}

	var actor AuthContext
	if err := json.Unmarshal([]byte(data), &actor); err != nil {
		return Anonymous, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return actor, nil
}

// Destroy invalidates a token server-side immediately.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}
