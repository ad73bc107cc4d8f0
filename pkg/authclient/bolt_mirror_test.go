package authclient

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltMirror_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m, err := OpenBoltMirror(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	_, ok, err := m.Get(ctx, mirrorKeyToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, mirrorKeyToken, "tok"))
	v, ok, err := m.Get(ctx, mirrorKeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", v)

	require.NoError(t, m.Delete(ctx, mirrorKeyToken))
	require.NoError(t, m.Delete(ctx, mirrorKeyToken))
	_, ok, err = m.Get(ctx, mirrorKeyToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBoltMirror_SessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth.db")
	gw := &fakeGateway{user: &User{ID: "u1", Name: "Alice", Role: RoleStaff, Token: "durable"}}

	m, err := OpenBoltMirror(path)
	require.NoError(t, err)
	s, _ := newTestStore(t, gw, m)
	require.NoError(t, s.Login(ctx, "alice@example.com", "pw"))
	require.NoError(t, m.Close())

	reopened, err := OpenBoltMirror(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	restored, _ := newTestStore(t, gw, reopened)
	st := restored.State()
	require.Equal(t, "durable", st.Token)
	require.Equal(t, "Alice", st.User.Name)
}
