// Package authz implements the role gate that protects operations. A Gate
// is a pure guard: it holds no state of its own and re-reads the caller's
// role from the store on every check, so role changes take effect on the
// next protected call without a re-login.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/session"
)

var (
	// ErrNotAuthenticated denies callers that have not logged in.
	ErrNotAuthenticated = errors.New("authz: must log in")

	// ErrForbidden denies authenticated callers whose role is not permitted.
	ErrForbidden = errors.New("authz: insufficient role")
)

// RoleSource reports the current role for a username; "" means unknown.
// The user store satisfies this.
type RoleSource interface {
	GetRole(ctx context.Context, username string) (domain.Role, error)
}

// Op is a protected operation.
type Op func(ctx context.Context, sess *session.Session) error

// Gate permits or denies execution based on the caller's current role.
type Gate struct {
	source  RoleSource
	allowed []domain.Role
	permit  map[domain.Role]struct{}
}

// RequireRoles builds a gate that admits the given roles. The role set must
// be non-empty.
func RequireRoles(source RoleSource, roles ...domain.Role) Gate {
	if len(roles) == 0 {
		panic("authz: gate requires at least one permitted role")
	}
	permit := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		permit[r] = struct{}{}
	}
	return Gate{source: source, allowed: roles, permit: permit}
}

// Check evaluates the gate for sess. It refreshes sess.Role from the role
// source, so a demotion or promotion applied through the store is observed
// immediately. Denials are ordinary errors, never panics.
func (g Gate) Check(ctx context.Context, sess *session.Session) error {
	if sess == nil || !sess.Authenticated {
		return ErrNotAuthenticated
	}

	role, err := g.source.GetRole(ctx, sess.Username)
	if err != nil {
		return err
	}
	sess.Role = role

	if _, ok := g.permit[role]; !ok {
		return fmt.Errorf("%w: requires one of [%s]", ErrForbidden, joinRoles(g.allowed))
	}
	return nil
}

// Wrap returns op guarded by the gate. The gate is evaluated on every
// invocation; a denial returns the guard error without executing any part
// of op.
func (g Gate) Wrap(op Op) Op {
	return func(ctx context.Context, sess *session.Session) error {
		if err := g.Check(ctx, sess); err != nil {
			return err
		}
		return op(ctx, sess)
	}
}

func joinRoles(roles []domain.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}
