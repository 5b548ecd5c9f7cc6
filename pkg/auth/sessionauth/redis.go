package sessionauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vango-dev/signup/pkg/auth"
)

// DefaultRedisPrefix is prepended to session IDs to form Redis keys.
const DefaultRedisPrefix = "signup:session:"

// ErrSessionNotFound is returned when no session exists for an ID.
var ErrSessionNotFound = errors.New("sessionauth: session not found")

// RedisStore is a SessionStore backed by Redis. Sessions are stored as JSON
// under prefix+ID with a TTL matching their expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisStoreOption configures RedisStore behavior.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix for session keys.
// Default: "signup:session:".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get loads a session. It returns ErrSessionNotFound for unknown IDs.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*StoredSession, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessionauth: get session: %w", err)
	}

	var stored StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("sessionauth: decode session: %w", err)
	}
	if stored.ID == "" {
		stored.ID = sessionID
	}
	return &stored, nil
}

// Validate rejects revoked and expired sessions.
func (s *RedisStore) Validate(_ context.Context, session *StoredSession) error {
	if session.Revoked {
		return auth.ErrSessionRevoked
	}
	if !session.ExpiresAt.IsZero() && !s.now().Before(session.ExpiresAt) {
		return auth.ErrSessionExpired
	}
	return nil
}

// Save stores a session until its expiry. A session without an expiry is
// kept until deleted; an already expired session is deleted.
func (s *RedisStore) Save(ctx context.Context, session *StoredSession) error {
	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, session.ID)
		}
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("sessionauth: encode session: %w", err)
	}
	return s.client.Set(ctx, s.key(session.ID), data, ttl).Err()
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
