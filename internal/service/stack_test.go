package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/target/paystream-client/internal/adapters/apiclient"
	"github.com/target/paystream-client/internal/adapters/artifacts"
	"github.com/target/paystream-client/internal/adapters/passwordauth"
	domainauth "github.com/target/paystream-client/internal/domain/auth"
	mockauth "github.com/target/paystream-client/internal/mocks/auth"
	"github.com/target/paystream-client/internal/testutil/fakeapi"
)

// stack wires the real adapters against an in-process fake API.
type stack struct {
	fake      *fakeapi.Server
	store     *mockauth.MemorySessionStore
	sessions  *SessionService
	sync      *Synchronizer
	workflows *WorkflowService
	dir       string

	adminID    string
	employeeID string
}

func newStack(t *testing.T) *stack {
	t.Helper()
	fake := fakeapi.New(t)
	st := &stack{
		fake:       fake,
		store:      mockauth.NewMemorySessionStore(),
		dir:        t.TempDir(),
		adminID:    fake.AddAccount("admin@example.com", "pw", domainauth.RoleAdmin),
		employeeID: fake.AddAccount("a@b.com", "x", domainauth.RoleEmployee),
	}
	logger := discardLogger()

	authAPI, err := apiclient.New(apiclient.Config{BaseURL: fake.URL, Logger: logger})
	require.NoError(t, err)
	provider, err := passwordauth.NewProvider(passwordauth.ProviderConfig{API: authAPI})
	require.NoError(t, err)

	st.sessions = NewSessionService(SessionServiceOptions{
		Authenticator: provider,
		Store:         st.store,
		Logger:        logger,
	})
	require.NoError(t, st.sessions.Init(context.Background()))

	api, err := apiclient.New(apiclient.Config{BaseURL: fake.URL, Tokens: st.sessions, Logger: logger})
	require.NoError(t, err)

	st.sync = NewSynchronizer(SynchronizerOptions{API: api, Sessions: st.sessions, Logger: logger})
	t.Cleanup(st.sync.Close)
	st.workflows = NewWorkflowService(WorkflowServiceOptions{
		API:       api,
		Sessions:  st.sessions,
		Sync:      st.sync,
		Artifacts: artifacts.NewDirWriter(st.dir),
		Logger:    logger,
	})
	return st
}

// login logs in and serves the sync the login requested.
func (st *stack) login(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()
	_, err := st.sessions.Login(ctx, domainauth.Credentials{Username: email, Password: password})
	require.NoError(t, err)
	require.True(t, st.sync.Pending(), "login requests a sync")
	_, err = st.sync.Drain(ctx)
	require.NoError(t, err)
}

func (st *stack) loginAdmin(t *testing.T)    { st.login(t, "admin@example.com", "pw") }
func (st *stack) loginEmployee(t *testing.T) { st.login(t, "a@b.com", "x") }
