package domain_test

import (
	"testing"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := domain.ParseRole("user")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, role)

	role, err = domain.ParseRole("admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, role)

	_, err = domain.ParseRole("")
	require.Error(t, err)

	_, err = domain.ParseRole("superuser")
	require.Error(t, err)
}

func TestRoleValid(t *testing.T) {
	require.True(t, domain.RoleUser.Valid())
	require.True(t, domain.RoleAdmin.Valid())
	require.False(t, domain.Role("").Valid())
	require.False(t, domain.Role("root").Valid())
}
