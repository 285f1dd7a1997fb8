package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	"github.com/target/paystream-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Authenticator = (*MockAuthenticator)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.TokenSource   = StaticToken("")
)

// ErrRejected is returned by MockAuthenticator for unknown credentials.
var ErrRejected = errors.New("credentials rejected")

// MockAuthenticator simulates the payroll API's auth endpoints with deterministic tokens.
type MockAuthenticator struct {
	LoginFunc  func(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error)
	SignupFunc func(ctx context.Context, profile domainauth.Profile) error
	VerifyFunc func(ctx context.Context, token string) (model.User, error)

	// TokenPrefix is used to mint tokens of the form "<prefix>-<n>".
	TokenPrefix string

	mu        sync.Mutex
	accounts  map[string]domainauth.Profile
	issued    map[string]string // token -> email
	callCount int
}

// NewMockAuthenticator creates a MockAuthenticator with sensible defaults.
func NewMockAuthenticator() *MockAuthenticator {
	return &MockAuthenticator{TokenPrefix: "mock-token"}
}

// Register adds an account the default Login accepts.
func (m *MockAuthenticator) Register(p domainauth.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accounts == nil {
		m.accounts = make(map[string]domainauth.Profile)
	}
	m.accounts[p.Email] = p
}

// Calls reports how many Login calls were made.
func (m *MockAuthenticator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockAuthenticator) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error) {
	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.accounts[creds.Username]
	if !ok || p.Password != creds.Password {
		return domainauth.Session{}, ErrRejected
	}

	prefix := m.TokenPrefix
	if prefix == "" {
		prefix = "mock-token"
	}
	tok := fmt.Sprintf("%s-%d", prefix, n)
	if m.issued == nil {
		m.issued = make(map[string]string)
	}
	m.issued[tok] = p.Email
	return domainauth.Session{Token: tok, Role: p.Role, Subject: p.Email}, nil
}

func (m *MockAuthenticator) Signup(ctx context.Context, profile domainauth.Profile) error {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, profile)
	}
	m.mu.Lock()
	_, exists := m.accounts[profile.Email]
	m.mu.Unlock()
	if exists {
		return errors.New("email exists")
	}
	m.Register(profile)
	return nil
}

func (m *MockAuthenticator) Verify(ctx context.Context, token string) (model.User, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.issued[token]
	if !ok {
		return model.User{}, ErrRejected
	}
	p := m.accounts[email]
	return model.User{ID: email, Email: email, Role: p.Role}, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	// SaveErr and ClearErr, when set, are returned instead of touching the record.
	SaveErr  error
	ClearErr error

	mu     sync.Mutex
	sess   domainauth.Session
	saves  int
	clears int
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Load(_ context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if !sess.Authenticated() {
		return errors.New("session requires both token and role")
	}
	m.sess = sess
	m.saves++
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = domainauth.Session{}
	m.clears++
	return nil
}

// Put stores sess verbatim, bypassing validation, to simulate corrupt records.
func (m *MemorySessionStore) Put(sess domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
}

// Stored returns the current record.
func (m *MemorySessionStore) Stored() domainauth.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Counts reports the number of successful Save and Clear calls.
func (m *MemorySessionStore) Counts() (saves, clears int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.clears
}

// StaticToken is a TokenSource that always yields the same token.
type StaticToken string

func (s StaticToken) Token() (string, bool) { return string(s), s != "" }
