package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Payroll API endpoint and transport settings
//   - session.go: Where the session record is persisted
//   - database.go: Redis connection for the redis session backend
//   - download.go: Where downloaded payslips are written
//   - observability.go: Logging and metrics
type AppConfig struct {
	// Payroll API configuration
	API APIConfig

	// Session persistence configuration
	Session SessionConfig

	// Redis configuration (used when SESSION_BACKEND=redis)
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Download configuration
	Download DownloadConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Session.Sanitize()
	c.Redis.Sanitize()
	c.Download.Sanitize()
	c.Observability.Sanitize()
}
