package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/qmiks/rolegate/internal/auth/store"
	"github.com/qmiks/rolegate/pkg/slogx"
)

// ErrSelfRoleChange reports an actor trying to change their own role. The
// refusal prevents an admin locking themselves out (or quietly escalating);
// it belongs to this flow, not to the store primitive, which stays
// unconditional.
var ErrSelfRoleChange = errors.New("cannot change own role")

// UserService exposes user lookup and role management flows.
type UserService struct {
	Store store.Store
}

// GetRole returns the role for a username, "" if unknown.
func (s *UserService) GetRole(ctx context.Context, username string) (domain.Role, error) {
	return s.Store.GetRole(ctx, username)
}

// ListUsers returns all user records sorted by username.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	snap, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(snap))
	for _, u := range snap {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// SetRole updates a user's role on behalf of actor. Changing one's own role
// is refused with ErrSelfRoleChange; an unknown username is a silent no-op,
// callers who need to report it must check existence first.
func (s *UserService) SetRole(
	ctx context.Context,
	actor *session.Session,
	username string,
	role domain.Role,
) error {
	if actor != nil && actor.Authenticated && actor.Username == username {
		return ErrSelfRoleChange
	}

	if err := s.Store.SetRole(ctx, username, role); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("role updated",
		slog.String("username", username),
		slog.String("role", role.String()),
	)
	return nil
}
