package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session ID has no live entry. On
// logout this is treated as already-logged-out, not as a failure.
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store persists the mapping from opaque session IDs to principal
// identifiers. Implementations must be safe for concurrent use across
// different sessions; operations on the same session are last-write-wins.
type Store interface {
	// Create stores the subject under a new random session ID with the given TTL
	Create(ctx context.Context, subject string, ttl time.Duration) (string, error)

	// Get returns the subject for a session ID, refreshing its idle timeout
	Get(ctx context.Context, sessionID string) (string, error)

	// Delete removes a session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore implements Store on top of Redis. Expiry is enforced by Redis
// key TTL; no sweep is required.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Create stores the subject under a new random 256-bit session ID
func (s *RedisStore) Create(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	sessionID, err := newSessionID()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, keyPrefix+sessionID, subject, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sessionID, nil
}

// Get returns the subject for a session ID and slides its idle timeout
func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	subject, err := s.client.GetEx(ctx, keyPrefix+sessionID, s.ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	return subject, nil
}

// Delete removes a session; absent sessions are a no-op
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// newSessionID returns a 256-bit hex-encoded random identifier
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
