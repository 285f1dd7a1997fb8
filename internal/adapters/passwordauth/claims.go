package passwordauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	subject   string
	role      string
	expiresAt time.Time
}

// introspect reads sub, role and exp from a JWT bearer without verifying it.
// The signing key stays with the server; the values only drive local session
// expiry and display. Opaque tokens yield zero claims.
func introspect(raw string) tokenClaims {
	var out tokenClaims
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return out
	}
	if sub, err := claims.GetSubject(); err == nil {
		out.subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.expiresAt = exp.Time.UTC()
	}
	if role, ok := claims["role"].(string); ok {
		out.role = role
	}
	return out
}
