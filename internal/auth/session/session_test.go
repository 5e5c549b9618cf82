package session_test

import (
	"testing"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	sess := session.New()
	require.False(t, sess.Authenticated)
	require.Empty(t, sess.Username)
	require.Empty(t, sess.Role)

	sess.Login("alice", domain.RoleUser)
	require.True(t, sess.Authenticated)
	require.Equal(t, "alice", sess.Username)
	require.Equal(t, domain.RoleUser, sess.Role)
	require.False(t, sess.IsAdmin())

	sess.Logout()
	require.False(t, sess.Authenticated)
	require.Empty(t, sess.Username)
	require.Empty(t, sess.Role)
}

func TestIsAdmin(t *testing.T) {
	var nilSess *session.Session
	require.False(t, nilSess.IsAdmin())

	sess := session.New()
	sess.Login("root", domain.RoleAdmin)
	require.True(t, sess.IsAdmin())
}

func TestManager(t *testing.T) {
	m := session.NewManager()

	id, sess := m.Start()
	require.False(t, id.IsZero())
	require.False(t, sess.Authenticated)

	got, ok := m.Get(id)
	require.True(t, ok)
	require.Same(t, sess, got)

	// Each client gets its own session.
	id2, sess2 := m.Start()
	require.NotEqual(t, id, id2)
	require.NotSame(t, sess, sess2)
	require.Equal(t, 2, m.Len())

	m.End(id)
	_, ok = m.Get(id)
	require.False(t, ok)
	require.Equal(t, 1, m.Len())

	m.End(id) // repeated End is fine
}
