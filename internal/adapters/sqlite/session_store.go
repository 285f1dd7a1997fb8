// Package sqlite provides a SQLite-backed session store for the paystream client.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Import sqlite driver.
	_ "modernc.org/sqlite"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps one session row per profile. Token and role live in the
// same row and are written by a single statement.
type SessionStore struct {
	conn    *sql.DB
	profile string
}

// Open opens (or creates) the database at path and prepares the schema.
func Open(ctx context.Context, path, profile string) (*SessionStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent saves.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SessionStore{conn: conn, profile: profile}
	if s.profile == "" {
		s.profile = "default"
	}
	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SessionStore) migrate(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS sessions (
		profile    TEXT PRIMARY KEY,
		token      TEXT NOT NULL CHECK (token <> ''),
		role       TEXT NOT NULL CHECK (role IN ('admin', 'employee')),
		subject    TEXT NOT NULL DEFAULT '',
		expires_at INTEGER NOT NULL DEFAULT 0,
		saved_at   INTEGER NOT NULL
	)`
	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate sessions table: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (domainauth.Session, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT token, role, subject, expires_at FROM sessions WHERE profile = ?", s.profile)

	var (
		sess    domainauth.Session
		role    string
		expires int64
	)
	if err := row.Scan(&sess.Token, &role, &sess.Subject, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domainauth.Session{}, nil
		}
		return domainauth.Session{}, fmt.Errorf("load session: %w", err)
	}
	sess.Role = domainauth.Role(role)
	if expires > 0 {
		sess.ExpiresAt = time.Unix(expires, 0).UTC()
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if !sess.Authenticated() {
		return errors.New("session requires both token and role")
	}
	var expires int64
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt.Unix()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO sessions (profile, token, role, subject, expires_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			token = excluded.token,
			role = excluded.role,
			subject = excluded.subject,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		s.profile, sess.Token, sess.Role.String(), sess.Subject, expires, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM sessions WHERE profile = ?", s.profile); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.conn.Close()
}
