package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/qmiks/rolegate/internal/auth/store"
	"github.com/qmiks/rolegate/pkg/cryptox"
	"github.com/qmiks/rolegate/pkg/slogx"
)

// ErrNotLoggedIn reports an operation that needs an authenticated session.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthService verifies credentials and drives session transitions.
type AuthService struct {
	Store store.Store
	Hash  cryptox.Hasher
}

// Authenticate reports whether the username/password pair is valid. No side
// effects. A false result never distinguishes an unknown user from a wrong
// password, so callers cannot enumerate accounts.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	snap, err := s.Store.Load(ctx)
	if err != nil {
		return false, err
	}
	u, ok := snap[username]
	if !ok {
		return false, nil
	}
	return cryptox.VerifySecret(password, u.PasswordDigest), nil
}

// Login authenticates and, on success, transitions sess to the logged-in
// state with the user's current role. Returns false (and leaves sess
// untouched) on bad credentials.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, username, password string) (bool, error) {
	ok, err := s.Authenticate(ctx, username, password)
	if err != nil || !ok {
		return false, err
	}

	role, err := s.Store.GetRole(ctx, username)
	if err != nil {
		return false, err
	}
	sess.Login(username, role)

	slogx.FromContext(ctx).Info("login",
		slog.String("username", username),
		slog.String("role", role.String()),
	)
	return true, nil
}

// Logout resets sess to the logged-out state. Safe to call on a session
// that is already logged out.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	if sess.Authenticated {
		slogx.FromContext(ctx).Info("logout", slog.String("username", sess.Username))
	}
	sess.Logout()
}

// Register creates a new account. Returns false (with zero state change) if
// the username is taken. The requested role is granted only when sess is an
// authenticated admin; any other caller gets the default user role
// regardless of what was requested — silently, matching the permissive
// signup behavior this service preserves.
func (s *AuthService) Register(
	ctx context.Context,
	sess *session.Session,
	username, password string,
	requested domain.Role,
) (bool, error) {
	l := slogx.FromContext(ctx)

	role := ResolveRole(sess, requested)
	if role != requested && requested != "" {
		l.Debug("registration role request downgraded",
			slog.String("username", username),
			slog.String("requested", requested.String()),
		)
	}

	digest, err := s.Hash(password)
	if err != nil {
		return false, err
	}

	err = s.Store.CreateUser(ctx, domain.User{
		Username:       username,
		PasswordDigest: digest,
		Role:           role,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	l.Info("user registered",
		slog.String("username", username),
		slog.String("role", role.String()),
	)
	return true, nil
}

// ChangePassword replaces the caller's own password after verifying the old
// one. Returns false on a wrong old password.
func (s *AuthService) ChangePassword(
	ctx context.Context,
	sess *session.Session,
	oldPassword, newPassword string,
) (bool, error) {
	if sess == nil || !sess.Authenticated {
		return false, ErrNotLoggedIn
	}

	ok, err := s.Authenticate(ctx, sess.Username, oldPassword)
	if err != nil || !ok {
		return false, err
	}

	digest, err := s.Hash(newPassword)
	if err != nil {
		return false, err
	}
	if err := s.Store.UpdatePasswordDigest(ctx, sess.Username, digest); err != nil {
		return false, err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("username", sess.Username))
	return true, nil
}

// ResolveRole applies the registration role policy: admins may grant any
// valid role, everyone else gets the default.
func ResolveRole(sess *session.Session, requested domain.Role) domain.Role {
	if requested.Valid() && sess.IsAdmin() {
		return requested
	}
	return domain.RoleUser
}
