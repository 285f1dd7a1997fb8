package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/paystream-client/config"
	"github.com/target/paystream-client/internal/adapters/filestore"
	"github.com/target/paystream-client/internal/adapters/memstore"
	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	"github.com/target/paystream-client/internal/service"
	"github.com/target/paystream-client/internal/testutil"
	"github.com/target/paystream-client/internal/testutil/fakeapi"
)

func testConfig(baseURL, dir string) *config.AppConfig {
	cfg := &config.AppConfig{
		API:      config.APIConfig{BaseURL: baseURL},
		Session:  config.SessionConfig{Backend: config.SessionBackendFile, Path: filepath.Join(dir, "session.json")},
		Download: config.DownloadConfig{Dir: dir},
	}
	cfg.Sanitize()
	return cfg
}

func TestBuildServices_EndToEnd(t *testing.T) {
	fake := fakeapi.New(t)
	empID := fake.AddAccount("a@b.com", "x", domainauth.RoleEmployee)
	fake.AddSalarySlip(testutil.NewSalarySlip().WithEmployee(empID).Build())
	dir := t.TempDir()
	ctx := context.Background()

	c, err := BuildServices(ctx, ServiceDeps{
		Config: testConfig(fake.URL, dir),
		Store:  memstore.New(),
		Logger: testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Sessions.Login(ctx, domainauth.Credentials{Username: "a@b.com", Password: "x"})
	require.NoError(t, err)
	snap, err := c.Sync.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, snap.SalarySlips, 1)
	assert.Equal(t, service.ViewEmployeeDashboard, service.ResolveView(c.Sessions.Current(ctx)))

	path, err := c.Workflows.DownloadSlip(ctx, snap.SalarySlips[0].ID, snap.SalarySlips[0].Month)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Payslip_October.pdf"), path)
}

func TestBuildServices_RestoresPersistedSession(t *testing.T) {
	fake := fakeapi.New(t)
	fake.AddAccount("admin@example.com", "pw", domainauth.RoleAdmin)
	fake.GrantToken("admin-token", "admin@example.com")
	dir := t.TempDir()
	ctx := context.Background()
	cfg := testConfig(fake.URL, dir)

	store, err := filestore.New(cfg.Session.Path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testutil.AdminSession()))

	c, err := BuildServices(ctx, ServiceDeps{Config: cfg, Store: store, Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, testutil.AdminSession(), c.Sessions.Current(ctx))
	assert.True(t, c.Sync.Pending(), "a restored session requests a sync")

	snap, err := c.Sync.Drain(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 1, snap.Stats.TotalUsers)
	assert.ElementsMatch(t, []string{"GET /admin/stats", "GET /expense", "GET /users"}, fake.Requests())
}

func TestBuildServices_RequiresDeps(t *testing.T) {
	_, err := BuildServices(context.Background(), ServiceDeps{})
	require.Error(t, err)

	_, err = BuildServices(context.Background(), ServiceDeps{Config: &config.AppConfig{}})
	require.Error(t, err)

	_, err = BuildServices(context.Background(), ServiceDeps{
		Config: &config.AppConfig{API: config.APIConfig{BaseURL: "not a url"}},
		Store:  memstore.New(),
	})
	require.Error(t, err)
}

func TestOpen_MemoryBackend(t *testing.T) {
	fake := fakeapi.New(t)
	cfg := testConfig(fake.URL, t.TempDir())
	cfg.Session.Backend = config.SessionBackendMemory

	c, err := Open(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.False(t, c.Sessions.Current(context.Background()).Authenticated())
	assert.Equal(t, model.Snapshot{}, c.Sync.Snapshot())
	require.NoError(t, c.Close())
}
