// Package filestore persists the client session as a JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/target/paystream-client/internal/adapters/fsutil"
	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// Store keeps one session record in a file readable only by the owner.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a Store writing to path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("session file path is required")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Load(_ context.Context) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domainauth.Session{}, nil
		}
		return domainauth.Session{}, fmt.Errorf("read session file: %w", err)
	}
	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session file: %w", err)
	}
	return sess, nil
}

func (s *Store) Save(_ context.Context, sess domainauth.Session) error {
	if !sess.Authenticated() {
		return errors.New("session requires both token and role")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fsutil.WriteFileAtomic(s.path, data, 0o600)
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
