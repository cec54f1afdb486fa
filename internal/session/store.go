package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/depositflow/depositflow/internal/identity"
)

const keyPrefix = "session:v1:"

// ErrNotFound indicates the token does not correspond to a live session.
var ErrNotFound = errors.New("session not found")

// Store manages server-side sessions.
type Store interface {
	Create(ctx context.Context, user identity.User) (Session, error)
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(cache *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, ttl: ttl}
}

// Create mints an opaque token and stores the session payload under it.
func (s *RedisStore) Create(ctx context.Context, user identity.User) (Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}

	if err := s.cache.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	return sess, nil
}

// Get resolves a token to its session.
func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	payload, err := s.cache.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	sess.Token = token
	return sess, nil
}

// Delete removes the session, invalidating the token.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.cache.Del(ctx, keyPrefix+token).Err()
}
