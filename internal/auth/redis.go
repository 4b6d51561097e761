package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session tokens in Redis.
const sessionKeyPrefix = "session:"

// Compile-time check that RedisSessions implements SessionStore.
var _ SessionStore = (*RedisSessions)(nil)

// RedisSessions is a Redis-backed SessionStore. Tokens expire server-side
// via key TTLs.
type RedisSessions struct {
	client *redis.Client
}

// NewRedisSessions creates a session store on an existing Redis client.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// NewRedisSessionsFromURL connects to Redis using a redis:// URL.
func NewRedisSessionsFromURL(url string) (*RedisSessions, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("auth: parse redis url: %w", err)
	}
	return NewRedisSessions(redis.NewClient(opts)), nil
}

// Create opens a session for the user and returns its opaque token.
func (s *RedisSessions) Create(ctx context.Context, userID string) (string, error) {
	token := newToken()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("auth: store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user ID a token belongs to.
func (s *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("auth: load session: %w", err)
	}
	return userID, nil
}

// Destroy invalidates a token.
func (s *RedisSessions) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}
