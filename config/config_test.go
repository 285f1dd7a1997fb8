package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse returned error: %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Session.Backend != SessionBackendFile {
		t.Fatalf("expected file backend, got %q", cfg.Session.Backend)
	}
	if !strings.HasSuffix(cfg.Session.Path, "session-default.json") {
		t.Fatalf("expected default session path, got %q", cfg.Session.Path)
	}
	if cfg.Observability.Logging.Level != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v", cfg.Observability.Logging.Level)
	}
	if cfg.Observability.Logging.Format != LogFormatJSON {
		t.Fatalf("expected json format, got %q", cfg.Observability.Logging.Format)
	}
	if cfg.Download.Dir != "." {
		t.Fatalf("expected working directory for downloads, got %q", cfg.Download.Dir)
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", " https://payroll.example.com/ ")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("API_USER_AGENT", "paystream-test")
	t.Setenv("SESSION_BACKEND", "SQLite")
	t.Setenv("SESSION_PATH", "/tmp/paystream/sessions.db")
	t.Setenv("SESSION_PROFILE", "work")
	t.Setenv("REDIS_URI", "redis://cache:6379/2")
	t.Setenv("REDIS_KEY_PREFIX", "ps:")
	t.Setenv("DOWNLOAD_DIR", "/tmp/slips")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("OBSERVABILITY_METRICS_ENABLED", "true")
	t.Setenv("OBSERVABILITY_METRICS_PREFIX", ".paystream.")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse returned error: %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != "https://payroll.example.com" {
		t.Fatalf("expected trimmed base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.UserAgent != "paystream-test" {
		t.Fatalf("unexpected user agent %q", cfg.API.UserAgent)
	}
	if cfg.Session.Backend != SessionBackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Session.Backend)
	}
	if cfg.Session.Path != "/tmp/paystream/sessions.db" {
		t.Fatalf("unexpected session path %q", cfg.Session.Path)
	}
	if cfg.Session.Profile != "work" {
		t.Fatalf("unexpected profile %q", cfg.Session.Profile)
	}
	if cfg.Redis.URI != "redis://cache:6379/2" || cfg.Redis.KeyPrefix != "ps:" {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Download.Dir != "/tmp/slips" {
		t.Fatalf("unexpected download dir %q", cfg.Download.Dir)
	}
	if cfg.Observability.Logging.Level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.Observability.Logging.Level)
	}
	if cfg.Observability.Logging.Format != LogFormatText {
		t.Fatalf("expected text format, got %q", cfg.Observability.Logging.Format)
	}
	if !cfg.Observability.Metrics.IsEnabled() {
		t.Fatal("expected metrics to be enabled")
	}
	if cfg.Observability.Metrics.Prefix != "paystream" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.Observability.Metrics.Prefix)
	}
}

func TestAppConfig_RejectsUnknownEnums(t *testing.T) {
	tests := map[string]string{
		"SESSION_BACKEND": "postgres",
		"LOG_FORMAT":      "xml",
		"LOG_LEVEL":       "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			var cfg AppConfig
			if err := env.Parse(&cfg); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestSessionBackend_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    SessionBackend
		wantErr bool
	}{
		{in: "file", want: SessionBackendFile},
		{in: " Redis ", want: SessionBackendRedis},
		{in: "MEMORY", want: SessionBackendMemory},
		{in: "sqlite", want: SessionBackendSQLite},
		{in: "", wantErr: true},
		{in: "keychain", wantErr: true},
	}
	for _, tt := range tests {
		var b SessionBackend
		err := b.UnmarshalText([]byte(tt.in))
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.in, err)
		}
		if b != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, b)
		}
	}
}

func TestSessionConfig_Sanitize(t *testing.T) {
	cfg := SessionConfig{Backend: SessionBackendSQLite, Profile: "  "}
	cfg.Sanitize()
	if cfg.Profile != "default" {
		t.Fatalf("expected default profile, got %q", cfg.Profile)
	}
	if filepath.Base(cfg.Path) != "sessions.db" {
		t.Fatalf("expected sqlite default path, got %q", cfg.Path)
	}

	cfg = SessionConfig{Backend: SessionBackendRedis, Profile: "ci"}
	cfg.Sanitize()
	if cfg.Path != "" {
		t.Fatalf("redis backend has no path, got %q", cfg.Path)
	}
}

func TestAPIConfig_Sanitize(t *testing.T) {
	cfg := APIConfig{Timeout: -1}
	cfg.Sanitize()
	if cfg.Timeout != defaultAPITimeout {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}

	cfg = APIConfig{Timeout: time.Hour}
	cfg.Sanitize()
	if cfg.Timeout != maxAPITimeout {
		t.Fatalf("expected timeout to be clamped, got %v", cfg.Timeout)
	}
}

func TestDownloadConfig_Sanitize(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg := DownloadConfig{Dir: "~/payslips"}
	cfg.Sanitize()
	if cfg.Dir != filepath.Join("/home/tester", "payslips") {
		t.Fatalf("expected home expansion, got %q", cfg.Dir)
	}

	cfg = DownloadConfig{Dir: "  "}
	cfg.Sanitize()
	if cfg.Dir != "." {
		t.Fatalf("expected working directory, got %q", cfg.Dir)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}
