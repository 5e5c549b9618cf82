package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/store"
	"github.com/qmiks/rolegate/internal/auth/store/drivers/jsonfile"
	"github.com/qmiks/rolegate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*jsonfile.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return jsonfile.New(path, cryptox.SHA256Hasher), path
}

func TestLoadBootstrapsMissingFile(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)

	admin, ok := snap["admin"]
	require.True(t, ok)
	require.Equal(t, domain.RoleAdmin, admin.Role)
	require.Equal(t, cryptox.HashSecret("admin"), admin.PasswordDigest)

	// The bootstrap snapshot is persisted before Load returns.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"admin"`)
}

func TestLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	first, err := s.Load(ctx)
	require.NoError(t, err)
	second, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	snap := domain.Snapshot{
		"admin": {Username: "admin", PasswordDigest: cryptox.HashSecret("admin"), Role: domain.RoleAdmin},
		"alice": {Username: "alice", PasswordDigest: cryptox.HashSecret("pw1"), Role: domain.RoleUser},
	}
	require.NoError(t, s.Save(ctx, snap))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, snap, loaded)

	require.NoError(t, s.Save(ctx, loaded))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after, "load->save must round-trip byte for byte")
}

func TestSnapshotIsPrettyPrinted(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	_, err := s.Load(ctx)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "\n  \"admin\": {\n    \"password\"")
	require.True(t, b[len(b)-1] == '\n')
}

func TestLoadCorruptedFile(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, store.ErrCorrupted)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	err := s.CreateUser(ctx, domain.User{
		Username:       "alice",
		PasswordDigest: cryptox.HashSecret("pw1"),
		Role:           domain.RoleUser,
	})
	require.NoError(t, err)

	role, err := s.GetRole(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, role)
}

func TestCreateUserDuplicateLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	// Bootstrap creates "admin"; a second insert with a different role and
	// password must fail without touching the original record.
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	original := snap["admin"]

	err = s.CreateUser(ctx, domain.User{
		Username:       "admin",
		PasswordDigest: cryptox.HashSecret("x"),
		Role:           domain.RoleUser,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	snap, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, original, snap["admin"])
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.CreateUser(ctx, domain.User{
		Username:       "bob",
		PasswordDigest: cryptox.HashSecret("pw"),
		Role:           domain.RoleUser,
	}))

	require.NoError(t, s.SetRole(ctx, "bob", domain.RoleAdmin))

	role, err := s.GetRole(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, role)
}

func TestSetRoleUnknownUserIsNoOp(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	before, err := s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetRole(ctx, "ghost", domain.RoleAdmin))

	after, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestGetRoleUnknownUserIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	role, err := s.GetRole(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, role)
}

func TestUpdatePasswordDigest(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.CreateUser(ctx, domain.User{
		Username:       "alice",
		PasswordDigest: cryptox.HashSecret("old"),
		Role:           domain.RoleUser,
	}))

	require.NoError(t, s.UpdatePasswordDigest(ctx, "alice", cryptox.HashSecret("new")))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, cryptox.HashSecret("new"), snap["alice"].PasswordDigest)

	err = s.UpdatePasswordDigest(ctx, "ghost", cryptox.HashSecret("x"))
	require.ErrorIs(t, err, store.ErrNotFound)
}
