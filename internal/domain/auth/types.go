package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole validates a role claim. Unknown or empty values are rejected.
func ParseRole(v string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(v))); r {
	case RoleAdmin, RoleEmployee:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role: %q (valid options: admin, employee)", v)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleEmployee }

func (r Role) String() string { return string(r) }

// Credentials are exchanged for a session at login.
type Credentials struct {
	Username string
	Password string
}

// Profile describes an account to create at signup.
type Profile struct {
	Email    string
	Password string
	Role     Role
}

// Session is the authenticated identity of the current client.
// Token and Role are always set and cleared together.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`

	// Subject and ExpiresAt are read from the bearer's claims when the token is a JWT.
	// Opaque tokens leave them empty.
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Authenticated returns true when both halves of the session are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Role.Valid()
}

// Expired reports whether the token's known expiry is at or before now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Same reports whether two sessions denote the same identity.
func (s Session) Same(o Session) bool {
	return s.Token == o.Token && s.Role == o.Role
}
