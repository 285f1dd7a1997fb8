package redis

// Package redis provides Redis-based adapters for the paystream client.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/ports"
)

const defaultPrefix = "paystream:session:"

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps one client session in Redis under a profile key.
// The record expires with the token when its expiry is known.
type SessionStore struct {
	client redis.UniversalClient
	key    string
	now    func() time.Time
}

// NewSessionStore creates a Redis-based session store for the given profile.
func NewSessionStore(client redis.UniversalClient, profile string) *SessionStore {
	return NewSessionStoreWithPrefix(client, defaultPrefix, profile)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix, profile string) *SessionStore {
	if profile == "" {
		profile = "default"
	}
	return &SessionStore{
		client: client,
		key:    prefix + profile,
		now:    time.Now,
	}
}

// Key returns the Redis key holding the record.
func (s *SessionStore) Key() string { return s.key }

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if !sess.Authenticated() {
		return errors.New("session requires both token and role")
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return errors.New("session is expired")
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// A single SET replaces token and role together.
	return s.client.Set(ctx, s.key, data, ttl).Err()
}

func (s *SessionStore) Load(ctx context.Context) (domainauth.Session, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, nil
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL normally handles this; clock skew can leave a record briefly.
	if sess.Expired(s.now()) {
		if deleteErr := s.Clear(ctx); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, nil
	}

	return sess, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
