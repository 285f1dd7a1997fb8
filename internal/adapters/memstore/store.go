// Package memstore keeps the client session in process memory.
package memstore

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// Store holds one session record until the process exits.
type Store struct {
	mu   sync.Mutex
	sess domainauth.Session
}

// New returns an empty Store.
func New() *Store { return &Store{} }

func (s *Store) Load(_ context.Context) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, nil
}

func (s *Store) Save(_ context.Context, sess domainauth.Session) error {
	if !sess.Authenticated() {
		return errors.New("session requires both token and role")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domainauth.Session{}
	return nil
}
