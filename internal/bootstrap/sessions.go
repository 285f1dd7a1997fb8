package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/paystream-client/config"
	"github.com/target/paystream-client/internal/adapters/filestore"
	"github.com/target/paystream-client/internal/adapters/memstore"
	redisadapter "github.com/target/paystream-client/internal/adapters/redis"
	"github.com/target/paystream-client/internal/adapters/sqlite"
	"github.com/target/paystream-client/internal/ports"
)

// SessionStoreConfig contains configuration for the session store.
type SessionStoreConfig struct {
	Session config.SessionConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// OpenSessionStore opens the configured session backend. The returned close
// function releases any connection the backend holds.
//
//nolint:ireturn // the backend is chosen at runtime.
func OpenSessionStore(ctx context.Context, cfg SessionStoreConfig) (ports.SessionStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return memstore.New(), noop, nil

	case config.SessionBackendSQLite:
		store, err := sqlite.Open(ctx, cfg.Session.Path, cfg.Session.Profile)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		logDebug(cfg.Logger, "session store ready", "backend", "sqlite", "path", cfg.Session.Path)
		return store, store.Close, nil

	case config.SessionBackendRedis:
		client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: cfg.Redis, Logger: cfg.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis session store: %w", err)
		}
		store := redisadapter.NewSessionStoreWithPrefix(client, cfg.Redis.KeyPrefix, cfg.Session.Profile)
		logDebug(cfg.Logger, "session store ready", "backend", "redis", "key", store.Key())
		return store, client.Close, nil

	case config.SessionBackendFile, "":
		store, err := filestore.New(cfg.Session.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open session file: %w", err)
		}
		logDebug(cfg.Logger, "session store ready", "backend", "file", "path", store.Path())
		return store, noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.Session.Backend)
	}
}

func logDebug(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
