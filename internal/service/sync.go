package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
	"github.com/target/paystream-client/internal/observability/metrics"
	"github.com/target/paystream-client/internal/observability/statsd"
	"github.com/target/paystream-client/internal/ports"
)

// ErrStaleSync is returned when the session changed while a sync was in flight.
// The fetched data was dropped.
var ErrStaleSync = errors.New("sync discarded: session changed")

// SessionSource is the part of SessionService the synchronizer depends on.
type SessionSource interface {
	Current(ctx context.Context) domainauth.Session
	Subscribe(fn func(domainauth.Session)) (unsubscribe func())
}

// SynchronizerOptions groups dependencies for Synchronizer.
type SynchronizerOptions struct {
	API      ports.PayrollAPI
	Sessions SessionSource
	Logger   *slog.Logger
	Now      func() time.Time
	Metrics  statsd.Sink // optional
}

// Synchronizer keeps the snapshot of server data for the current session.
type Synchronizer struct {
	api      ports.PayrollAPI
	sessions SessionSource
	logger   *slog.Logger
	now      func() time.Time
	metrics  statsd.Sink

	requests    chan struct{}
	unsubscribe func()

	mu      sync.Mutex
	session domainauth.Session
	// epoch increments on every session change; a sync started in an older epoch is dropped.
	epoch uint64
	// seq numbers syncs; sliceSeq holds the seq of the sync that last wrote each slice.
	seq      uint64
	sliceSeq map[model.Slice]uint64
	snap     model.Snapshot
	subs     map[int]func(model.Snapshot)
	nextSub  int
}

// NewSynchronizer constructs a Synchronizer bound to the session source.
// When a session is already active a background sync is requested.
func NewSynchronizer(opts SynchronizerOptions) *Synchronizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Synchronizer{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   logger.With("component", "sync"),
		now:      now,
		metrics:  opts.Metrics,
		requests: make(chan struct{}, 1),
		sliceSeq: make(map[model.Slice]uint64),
		subs:     make(map[int]func(model.Snapshot)),
	}

	sess := opts.Sessions.Current(context.Background())
	s.session = sess
	s.snap = model.EmptySnapshot(roleOf(sess))
	s.unsubscribe = opts.Sessions.Subscribe(s.onSession)
	if sess.Authenticated() {
		s.Request()
	}
	return s
}

func roleOf(sess domainauth.Session) domainauth.Role {
	if !sess.Authenticated() {
		return ""
	}
	return sess.Role
}

// onSession resets the snapshot on any identity change and requests a sync after login.
func (s *Synchronizer) onSession(sess domainauth.Session) {
	s.mu.Lock()
	if sess.Same(s.session) {
		s.session = sess
		s.mu.Unlock()
		return
	}
	s.session = sess
	s.epoch++
	s.snap = model.EmptySnapshot(roleOf(sess))
	clear(s.sliceSeq)
	published, subs := s.publishLocked()
	s.mu.Unlock()

	s.notify(subs, published)
	s.logger.Debug("session changed, snapshot reset", "role", roleOf(sess).String())
	if sess.Authenticated() {
		s.Request()
	}
}

// Sync refetches every slice the session role may read.
func (s *Synchronizer) Sync(ctx context.Context) (model.Snapshot, error) {
	return s.sync(ctx, nil)
}

// Resync refetches only the named slices the session role may read.
// Other slices keep their values.
func (s *Synchronizer) Resync(ctx context.Context, want ...model.Slice) (model.Snapshot, error) {
	if len(want) == 0 {
		return s.Snapshot(), nil
	}
	return s.sync(ctx, want)
}

type sliceResult struct {
	slice model.Slice
	err   error

	stats    model.Stats
	users    []model.User
	expenses []model.Expense
	slips    []model.SalarySlip
}

func (s *Synchronizer) sync(ctx context.Context, requested []model.Slice) (model.Snapshot, error) {
	// Current ends an expired session, which reaches onSession before we read s.session.
	s.sessions.Current(ctx)

	s.mu.Lock()
	sess := s.session
	epoch := s.epoch
	if !sess.Authenticated() {
		s.mu.Unlock()
		return s.Snapshot(), apperrors.Unauthenticated("not logged in")
	}
	eligible := model.SlicesFor(sess.Role)
	if requested != nil {
		eligible = slices.DeleteFunc(eligible, func(sl model.Slice) bool {
			return !slices.Contains(requested, sl)
		})
	}
	if len(eligible) == 0 {
		s.mu.Unlock()
		return s.Snapshot(), nil
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	start := time.Now()
	results := make([]sliceResult, len(eligible))
	var g errgroup.Group
	for i, sl := range eligible {
		g.Go(func() error {
			results[i] = s.fetch(ctx, sl)
			return nil
		})
	}
	_ = g.Wait()

	role := sess.Role.String()
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "dropping sync from previous session", "role", role, "seq", seq)
		metrics.EmitSync(s.metrics, metrics.SyncMetric{Role: role, Result: metrics.ResultStale, Duration: time.Since(start)})
		return s.Snapshot(), ErrStaleSync
	}

	var (
		errs    []error
		applied bool
		report  = make([]metrics.SliceMetric, 0, len(results))
	)
	for _, r := range results {
		m := metrics.SliceMetric{Role: role, Slice: r.slice, Result: metrics.ResultSuccess}
		if r.err != nil {
			m.Result, m.Err = metrics.ResultError, r.err
			errs = append(errs, fmt.Errorf("fetch %s: %w", r.slice, r.err))
		}
		if seq < s.sliceSeq[r.slice] {
			// A later sync already published this slice.
			m.Result = metrics.ResultNoop
			report = append(report, m)
			continue
		}
		report = append(report, m)
		s.sliceSeq[r.slice] = seq
		applied = true
		if r.err != nil {
			if s.snap.Stale == nil {
				s.snap.Stale = make(map[model.Slice]error)
			}
			s.snap.Stale[r.slice] = r.err
			continue
		}
		delete(s.snap.Stale, r.slice)
		applySlice(&s.snap, r)
	}

	var (
		published model.Snapshot
		subs      []func(model.Snapshot)
	)
	if applied {
		s.snap.Generation++
		s.snap.SyncedAt = s.now()
		published, subs = s.publishLocked()
	} else {
		published = s.snap.Clone()
	}
	s.mu.Unlock()

	s.notify(subs, published)

	err := errors.Join(errs...)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		s.logger.WarnContext(ctx, "sync incomplete", "role", role, "stale", published.StaleSlices(), "error", err)
	}
	metrics.EmitSync(s.metrics, metrics.SyncMetric{Role: role, Result: result, Duration: time.Since(start), Slices: report})
	return published, err
}

func (s *Synchronizer) fetch(ctx context.Context, sl model.Slice) sliceResult {
	r := sliceResult{slice: sl}
	switch sl {
	case model.SliceStats:
		r.stats, r.err = s.api.Stats(ctx)
	case model.SliceUsers:
		r.users, r.err = s.api.ListUsers(ctx)
	case model.SliceExpenses:
		r.expenses, r.err = s.api.ListExpenses(ctx)
	case model.SliceSalarySlips:
		r.slips, r.err = s.api.ListSalarySlips(ctx)
	default:
		r.err = apperrors.Internal(fmt.Sprintf("unknown slice %q", sl))
	}
	return r
}

func applySlice(snap *model.Snapshot, r sliceResult) {
	switch r.slice {
	case model.SliceStats:
		st := r.stats
		snap.Stats = &st
	case model.SliceUsers:
		snap.Users = r.users
	case model.SliceExpenses:
		snap.Expenses = r.expenses
	case model.SliceSalarySlips:
		snap.SalarySlips = r.slips
	}
}

// Snapshot returns a copy of the latest published snapshot.
func (s *Synchronizer) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Subscribe registers fn to be called with every published snapshot.
func (s *Synchronizer) Subscribe(fn func(model.Snapshot)) (unsubscribe func()) {
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

func (s *Synchronizer) publishLocked() (model.Snapshot, []func(model.Snapshot)) {
	subs := make([]func(model.Snapshot), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	return s.snap.Clone(), subs
}

func (s *Synchronizer) notify(subs []func(model.Snapshot), snap model.Snapshot) {
	for _, fn := range subs {
		fn(snap.Clone())
	}
}

// Request asks Run for a sync. Requests made while one is pending are merged.
func (s *Synchronizer) Request() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

// Run serves sync requests until ctx is done.
func (s *Synchronizer) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "synchronizer started")
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "synchronizer stopped")
			return nil
		case <-s.requests:
			s.serve(ctx)
		}
	}
}

// Pending reports whether a sync request is waiting to be served.
func (s *Synchronizer) Pending() bool {
	return len(s.requests) > 0
}

// Drain serves a pending request, if any, on the calling goroutine.
func (s *Synchronizer) Drain(ctx context.Context) (model.Snapshot, error) {
	select {
	case <-s.requests:
		return s.Sync(ctx)
	default:
		return s.Snapshot(), nil
	}
}

func (s *Synchronizer) serve(ctx context.Context) {
	_, err := s.Sync(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleSync), apperrors.IsUnauthenticated(err) && !s.authenticated():
		s.logger.DebugContext(ctx, "background sync skipped", "error", err)
	default:
		s.logger.WarnContext(ctx, "background sync failed", "error", err)
	}
}

func (s *Synchronizer) authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Authenticated()
}

// Close detaches the synchronizer from session changes.
func (s *Synchronizer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}
