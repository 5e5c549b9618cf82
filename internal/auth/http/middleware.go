package http

import (
	"errors"
	"net/http"

	"github.com/qmiks/rolegate/internal/auth/authz"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/qmiks/rolegate/pkg/httpx"
	"github.com/qmiks/rolegate/pkg/idx"
	"github.com/qmiks/rolegate/pkg/slogx"
)

// SessionCookie carries the opaque session id of a connected client.
const SessionCookie = "rolegate_session"

// SessionMiddleware resolves the caller's session from the session cookie,
// starting a fresh logged-out session (and setting the cookie) when there is
// none. The session is attached to the request context for handlers.
func SessionMiddleware(manager *session.Manager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := resolveSession(w, r, manager)
			next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), sess)))
		})
	}
}

func resolveSession(w http.ResponseWriter, r *http.Request, manager *session.Manager) *session.Session {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if id, err := idx.Parse(cookie.Value); err == nil {
			if sess, ok := manager.Get(id); ok {
				return sess
			}
		}
	}

	id, sess := manager.Start()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// requireGate enforces a role gate on the wrapped handler. Denials are
// reported to the caller as JSON errors; the handler never runs.
func requireGate(gate authz.Gate) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess := SessionFromContext(ctx)

			err := gate.Check(ctx, sess)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, authz.ErrNotAuthenticated):
				httpx.WriteError(w, http.StatusUnauthorized,
					"not_authenticated", "You must log in.")
			case errors.Is(err, authz.ErrForbidden):
				httpx.WriteError(w, http.StatusForbidden,
					"insufficient_role", err.Error())
			default:
				slogx.FromContext(ctx).Error("gate check failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError,
					"server_error", "Authorization check failed.")
			}
		})
	}
}
