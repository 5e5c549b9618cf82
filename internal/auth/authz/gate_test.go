package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qmiks/rolegate/internal/auth/authz"
	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/stretchr/testify/require"
)

// roleMap is an in-memory RoleSource.
type roleMap map[string]domain.Role

func (m roleMap) GetRole(_ context.Context, username string) (domain.Role, error) {
	return m[username], nil
}

func TestGateDeniesUnauthenticated(t *testing.T) {
	ctx := context.Background()
	gate := authz.RequireRoles(roleMap{}, domain.RoleUser, domain.RoleAdmin)

	executed := false
	op := gate.Wrap(func(context.Context, *session.Session) error {
		executed = true
		return nil
	})

	err := op(ctx, session.New())
	require.ErrorIs(t, err, authz.ErrNotAuthenticated)
	require.False(t, executed, "denied operation must have zero side effects")

	err = op(ctx, nil)
	require.ErrorIs(t, err, authz.ErrNotAuthenticated)
	require.False(t, executed)
}

func TestGateDeniesInsufficientRole(t *testing.T) {
	ctx := context.Background()
	roles := roleMap{"bob": domain.RoleUser}
	gate := authz.RequireRoles(roles, domain.RoleAdmin)

	sess := session.New()
	sess.Login("bob", domain.RoleUser)

	executed := false
	op := gate.Wrap(func(context.Context, *session.Session) error {
		executed = true
		return nil
	})

	err := op(ctx, sess)
	require.ErrorIs(t, err, authz.ErrForbidden)
	require.Contains(t, err.Error(), "admin")
	require.False(t, executed)
}

func TestGatePermitsAllowedRole(t *testing.T) {
	ctx := context.Background()
	roles := roleMap{"bob": domain.RoleUser}
	gate := authz.RequireRoles(roles, domain.RoleUser, domain.RoleAdmin)

	sess := session.New()
	sess.Login("bob", domain.RoleUser)

	executed := false
	err := gate.Wrap(func(context.Context, *session.Session) error {
		executed = true
		return nil
	})(ctx, sess)

	require.NoError(t, err)
	require.True(t, executed)
}

func TestGateReevaluatesRoleLive(t *testing.T) {
	ctx := context.Background()
	roles := roleMap{"bob": domain.RoleUser}
	adminOnly := authz.RequireRoles(roles, domain.RoleAdmin)

	sess := session.New()
	sess.Login("bob", domain.RoleUser)

	require.ErrorIs(t, adminOnly.Check(ctx, sess), authz.ErrForbidden)

	// Promotion through the store is observed on the very next check, with
	// no re-login.
	roles["bob"] = domain.RoleAdmin
	require.NoError(t, adminOnly.Check(ctx, sess))
	require.Equal(t, domain.RoleAdmin, sess.Role, "check refreshes the session role")

	// And a demotion revokes access just as immediately.
	roles["bob"] = domain.RoleUser
	require.ErrorIs(t, adminOnly.Check(ctx, sess), authz.ErrForbidden)
	require.Equal(t, domain.RoleUser, sess.Role)
}

func TestGateDeniesUnknownUser(t *testing.T) {
	ctx := context.Background()
	gate := authz.RequireRoles(roleMap{}, domain.RoleUser, domain.RoleAdmin)

	// Authenticated session whose user no longer exists in the store.
	sess := session.New()
	sess.Login("ghost", domain.RoleUser)

	require.ErrorIs(t, gate.Check(ctx, sess), authz.ErrForbidden)
}

func TestGatePropagatesSourceErrors(t *testing.T) {
	ctx := context.Background()
	srcErr := errors.New("boom")
	gate := authz.RequireRoles(failingSource{err: srcErr}, domain.RoleAdmin)

	sess := session.New()
	sess.Login("bob", domain.RoleAdmin)

	require.ErrorIs(t, gate.Check(ctx, sess), srcErr)
}

type failingSource struct{ err error }

func (f failingSource) GetRole(context.Context, string) (domain.Role, error) {
	return "", f.err
}

func TestRequireRolesEmptyPanics(t *testing.T) {
	require.Panics(t, func() { authz.RequireRoles(roleMap{}) })
}
