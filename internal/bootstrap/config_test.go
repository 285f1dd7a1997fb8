package bootstrap

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/paystream-client/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, config.LoggingConfig{Level: slog.LevelInfo, Format: config.LogFormatJSON})
		logger.Debug("hidden")
		logger.Info("shown", "component", "test")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `"msg":"shown"`)
		assert.Contains(t, out, `"component":"test"`)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, config.LoggingConfig{Level: slog.LevelDebug, Format: config.LogFormatText})
		logger.Debug("shown")
		assert.True(t, strings.Contains(buf.String(), "msg=shown"), buf.String())
	})
}

// unsetEnv removes keys for the duration of the test so .env values apply.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetEnv(t, "API_BASE_URL", "API_TIMEOUT", "SESSION_BACKEND")

	dotenv := "API_BASE_URL=https://payroll.example.com\nAPI_TIMEOUT=4s\nSESSION_BACKEND=memory\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://payroll.example.com", cfg.API.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.API.Timeout)
	assert.Equal(t, config.SessionBackendMemory, cfg.Session.Backend)
}

func TestLoadConfig_WithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_BACKEND", "redis")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.SessionBackendRedis, cfg.Session.Backend)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_BACKEND", "floppy")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
