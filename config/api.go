package config

import (
	"strings"
	"time"
)

const (
	defaultAPITimeout = 15 * time.Second
	maxAPITimeout     = 5 * time.Minute
)

// APIConfig contains payroll API client configuration.
type APIConfig struct {
	// BaseURL is the root of the payroll API (e.g., "https://payroll.example.com").
	BaseURL string `env:"API_BASE_URL" envDefault:"http://127.0.0.1:8000"`

	// Timeout bounds every request, including the body read. Requests are never retried.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// UserAgent is sent with every request.
	UserAgent string `env:"API_USER_AGENT" envDefault:"paystream-client"`

	// ClientID is sent with the password-grant token request when set.
	ClientID string `env:"API_CLIENT_ID"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.UserAgent = strings.TrimSpace(a.UserAgent)
	a.ClientID = strings.TrimSpace(a.ClientID)

	if a.Timeout <= 0 {
		a.Timeout = defaultAPITimeout
	}
	if a.Timeout > maxAPITimeout {
		a.Timeout = maxAPITimeout
	}
}
