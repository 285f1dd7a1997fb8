package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client, "test")
	ctx := context.Background()

	session := domainauth.Session{
		Token:     "tok1",
		Role:      domainauth.RoleEmployee,
		Subject:   "a@b.com",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Token, retrieved.Token)
	assert.Equal(t, session.Role, retrieved.Role)
	assert.Equal(t, session.Subject, retrieved.Subject)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)

	ttl := client.TTL(ctx, store.Key()).Val()
	assert.Greater(t, ttl, 29*time.Minute)
}

func TestSessionStore_LoadEmpty(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	sess, err := NewSessionStore(client, "empty").Load(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestSessionStore_Clear(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client, "clear")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{Token: "tok", Role: domainauth.RoleAdmin}))
	require.NoError(t, store.Clear(ctx))

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Session{}, sess)
	assert.Equal(t, int64(0), client.Exists(ctx, store.Key()).Val())
}

func TestSessionStore_NoExpiryKeepsRecord(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client, "opaque")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{Token: "opaque", Role: domainauth.RoleEmployee}))
	assert.Equal(t, time.Duration(-1), client.TTL(ctx, store.Key()).Val())
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client, "ttl")
	ctx := context.Background()

	session := domainauth.Session{
		Token:     "tok",
		Role:      domainauth.RoleEmployee,
		ExpiresAt: time.Now().Add(100 * time.Millisecond),
	}
	require.NoError(t, store.Save(ctx, session))

	time.Sleep(200 * time.Millisecond)

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStoreWithPrefix(client, "test-prefix:", "work")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{Token: "tok", Role: domainauth.RoleAdmin}))
	assert.Equal(t, int64(1), client.Exists(ctx, "test-prefix:work").Val())
}

func TestSessionStore_SaveHalfRecord(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client, "half")
	err := store.Save(context.Background(), domainauth.Session{Token: "tok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both token and role")
}

func TestSessionStore_SaveExpiredSession(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client, "expired")
	err := store.Save(context.Background(), domainauth.Session{
		Token:     "tok",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is expired")
}
