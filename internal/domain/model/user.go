// Package model defines the payroll data types held in client snapshots.
package model

import "github.com/target/paystream-client/internal/domain/auth"

// User is an entry of the admin directory.
// Other entities reference it by ID only.
type User struct {
	ID    string    `json:"id"    yaml:"id"`
	Email string    `json:"email" yaml:"email"`
	Role  auth.Role `json:"role"  yaml:"role"`
}
