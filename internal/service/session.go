package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
	"github.com/target/paystream-client/internal/ports"
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Authenticator ports.Authenticator
	Store         ports.SessionStore
	Logger        *slog.Logger
	Now           func() time.Time
}

// SessionService owns the client session. It is the only writer of the
// persisted record and of the in-memory copy, and notifies subscribers
// after every change.
type SessionService struct {
	authn  ports.Authenticator
	store  ports.SessionStore
	logger *slog.Logger
	now    func() time.Time

	// writeMu serializes store write, memory update and notification.
	writeMu sync.Mutex

	mu      sync.Mutex
	current domainauth.Session
	subs    map[int]func(domainauth.Session)
	nextSub int
}

var _ ports.TokenSource = (*SessionService)(nil)

// NewSessionService constructs a new SessionService. Call Init to load the persisted session.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		authn:  opts.Authenticator,
		store:  opts.Store,
		logger: logger.With("component", "session"),
		now:    now,
		subs:   make(map[int]func(domainauth.Session)),
	}
}

// Init loads the persisted session. Half records, unknown roles and expired
// tokens are discarded and cleared from the store.
func (s *SessionService) Init(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sess, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable session record", "error", err)
		return s.discardLocked(ctx)
	}

	switch {
	case sess.Token == "" && sess.Role == "":
		return nil
	case !sess.Authenticated():
		s.logger.WarnContext(ctx, "discarding incomplete session record",
			"has_token", sess.Token != "", "role", sess.Role.String())
		return s.discardLocked(ctx)
	case sess.Expired(s.now()):
		s.logger.InfoContext(ctx, "persisted session expired", "expired_at", sess.ExpiresAt)
		return s.discardLocked(ctx)
	}

	s.setLocked(sess)
	return nil
}

func (s *SessionService) discardLocked(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear session record")
	}
	return nil
}

// Login exchanges credentials for a session and persists token and role as one record.
// Every failure is reported as ErrAuth; the cause is only logged.
func (s *SessionService) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error) {
	sess, err := s.authn.Login(ctx, creds)
	if err == nil && !sess.Authenticated() {
		err = apperrors.Internal("login returned an incomplete session")
	}
	if err != nil {
		s.logger.DebugContext(ctx, "login failed", "error", err)
		return domainauth.Session{}, apperrors.ErrAuth
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if saveErr := s.store.Save(ctx, sess); saveErr != nil {
		s.logger.DebugContext(ctx, "persist session failed", "error", saveErr)
		return domainauth.Session{}, apperrors.ErrAuth
	}
	s.setLocked(sess)
	s.logger.InfoContext(ctx, "logged in", "role", sess.Role.String(), "subject", sess.Subject)
	return sess, nil
}

// Signup creates an account. It does not log in.
func (s *SessionService) Signup(ctx context.Context, profile domainauth.Profile) error {
	if err := s.authn.Signup(ctx, profile); err != nil {
		s.logger.DebugContext(ctx, "signup failed", "error", err)
		return apperrors.ErrAuth
	}
	s.logger.InfoContext(ctx, "account created", "role", profile.Role.String())
	return nil
}

// Logout clears the persisted record and the in-memory session.
// Memory is cleared even when the store fails; the store error is returned.
func (s *SessionService) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.store.Clear(ctx)
	s.setLocked(domainauth.Session{})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear session record")
	}
	s.logger.InfoContext(ctx, "logged out")
	return nil
}

// Current returns the session, ending it first when its token has expired.
func (s *SessionService) Current(ctx context.Context) domainauth.Session {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()

	if !sess.Authenticated() || !sess.Expired(s.now()) {
		return sess
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	// Another caller may have replaced the session meanwhile.
	s.mu.Lock()
	still := s.current.Same(sess)
	s.mu.Unlock()
	if still {
		if err := s.store.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "clear expired session failed", "error", err)
		}
		s.setLocked(domainauth.Session{})
		s.logger.InfoContext(ctx, "session expired", "expired_at", sess.ExpiresAt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token returns the bearer of an unexpired session.
func (s *SessionService) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.Authenticated() || s.current.Expired(s.now()) {
		return "", false
	}
	return s.current.Token, true
}

// Revalidate asks the server for the current account. When the server's role
// differs from the cached one, the session adopts it and subscribers are notified.
// Failures leave the session untouched.
func (s *SessionService) Revalidate(ctx context.Context) (model.User, error) {
	sess := s.Current(ctx)
	if !sess.Authenticated() {
		return model.User{}, apperrors.Unauthenticated("not logged in")
	}

	user, err := s.authn.Verify(ctx, sess.Token)
	if err != nil {
		return model.User{}, err
	}
	if !user.Role.Valid() || user.Role == sess.Role {
		return user, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	still := s.current.Same(sess)
	s.mu.Unlock()
	if !still {
		return user, nil
	}

	updated := sess
	updated.Role = user.Role
	if saveErr := s.store.Save(ctx, updated); saveErr != nil {
		return user, apperrors.Wrap(saveErr, apperrors.ErrCodeInternal, "persist revalidated role")
	}
	s.logger.InfoContext(ctx, "role changed on server", "from", sess.Role.String(), "to", user.Role.String())
	s.setLocked(updated)
	return user, nil
}

// Subscribe registers fn to be called with the new session after every change.
// Calls happen synchronously, in the goroutine that made the change.
func (s *SessionService) Subscribe(fn func(domainauth.Session)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// setLocked swaps the session and notifies subscribers. Caller holds writeMu.
func (s *SessionService) setLocked(sess domainauth.Session) {
	s.mu.Lock()
	s.current = sess
	subs := make([]func(domainauth.Session), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}
