package session

import "github.com/qmiks/rolegate/internal/auth/domain"

// Session is the process-local state of one connected client: whether it is
// authenticated and as whom. It is never persisted; its lifetime is bounded
// to the interactive session that owns it. The store remains the source of
// truth for roles — Role here is a convenience copy refreshed by the
// authorization gate on every check.
type Session struct {
	Authenticated bool
	Username      string
	Role          domain.Role
}

// New returns a session in the logged-out state.
func New() *Session {
	return &Session{}
}

// Login records a successful authentication.
func (s *Session) Login(username string, role domain.Role) {
	s.Authenticated = true
	s.Username = username
	s.Role = role
}

// Logout resets the session to the logged-out state.
func (s *Session) Logout() {
	s.Authenticated = false
	s.Username = ""
	s.Role = ""
}

// IsAdmin reports whether the session is authenticated with the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Authenticated && s.Role == domain.RoleAdmin
}
