package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Session{}, got)

	assert.Error(t, s.Save(ctx, domainauth.Session{Token: "t"}))

	sess := domainauth.Session{Token: "t", Role: domainauth.RoleEmployee}
	require.NoError(t, s.Save(ctx, sess))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Session{}, got)
}
