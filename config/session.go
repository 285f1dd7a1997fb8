package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionBackend selects where the session record is persisted.
type SessionBackend string

const (
	// SessionBackendFile stores the record as a JSON file.
	SessionBackendFile SessionBackend = "file"
	// SessionBackendSQLite stores the record in a local SQLite database.
	SessionBackendSQLite SessionBackend = "sqlite"
	// SessionBackendRedis stores the record in Redis, shared between machines.
	SessionBackendRedis SessionBackend = "redis"
	// SessionBackendMemory keeps the record for the lifetime of the process only.
	SessionBackendMemory SessionBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch SessionBackend(v) {
	case SessionBackendFile, SessionBackendSQLite, SessionBackendRedis, SessionBackendMemory:
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: file, sqlite, redis, memory)", v)
	}
}

// SessionConfig contains session persistence configuration.
type SessionConfig struct {
	// Backend determines which session store to use.
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"file"`

	// Path is the file or database location for the file and sqlite backends.
	// Empty selects a location under the user config directory.
	Path string `env:"SESSION_PATH"`

	// Profile names the record, so several logins can coexist in one store.
	Profile string `env:"SESSION_PROFILE" envDefault:"default"`
}

// Sanitize fills the default path for the selected backend.
func (s *SessionConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = SessionBackendFile
	}
	if s.Profile = strings.TrimSpace(s.Profile); s.Profile == "" {
		s.Profile = "default"
	}

	s.Path = strings.TrimSpace(s.Path)
	if s.Path != "" {
		return
	}
	switch s.Backend {
	case SessionBackendFile:
		s.Path = filepath.Join(configDir(), "session-"+s.Profile+".json")
	case SessionBackendSQLite:
		s.Path = filepath.Join(configDir(), "sessions.db")
	}
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".paystream"
	}
	return filepath.Join(dir, "paystream")
}
