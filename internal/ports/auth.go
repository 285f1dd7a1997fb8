package ports

// Package ports defines interfaces (hexagonal ports) for session and payroll behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
)

// Authenticator exchanges credentials with the payroll API.
type Authenticator interface {
	// Login returns a session holding the bearer token and role claim.
	Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error)

	// Signup creates an account. It does not establish a session.
	Signup(ctx context.Context, profile domainauth.Profile) error

	// Verify asks the server who the bearer of token is.
	Verify(ctx context.Context, token string) (model.User, error)
}

// SessionStore persists the client session across restarts.
// Token and role are written and cleared as one record.
type SessionStore interface {
	// Load returns the zero Session and a nil error when nothing is stored.
	Load(ctx context.Context) (domainauth.Session, error)
	Save(ctx context.Context, sess domainauth.Session) error
	Clear(ctx context.Context) error
}

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}
