package testutil

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTestRedisAddr = "localhost:6379"
	defaultTestRedisDB   = 15
	redisPingTimeout     = 2 * time.Second
)

// FixedTimeFunc returns a function that always returns the same time.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
}

// requireRedis turns a missing Redis into a failure instead of a skip.
func requireRedis() bool {
	switch strings.ToLower(os.Getenv("TEST_REQUIRE_REDIS")) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// RedisAddr returns REDIS_ADDR (or localhost:6379) and whether a server answers there.
func RedisAddr(t testing.TB) (string, bool) {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = defaultTestRedisAddr
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Logf("redis not available at %s: %v", addr, err)
		return addr, false
	}
	return addr, true
}

// SetupTestRedis connects to the test Redis on TEST_REDIS_DB (default 15) and
// empties that database. The test is skipped when no server is reachable,
// unless TEST_REQUIRE_REDIS is set.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr, ok := RedisAddr(t)
	if !ok {
		if requireRedis() {
			t.Fatalf("redis not available for testing at %s", addr)
		}
		t.Skipf("redis not available for testing at %s", addr)
	}

	db := defaultTestRedisDB
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			db = i
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("flush test redis db %d: %v", db, err)
	}
	return client
}
