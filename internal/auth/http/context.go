package http

import (
	"context"

	"github.com/qmiks/rolegate/internal/auth/session"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func contextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// SessionFromContext returns the session attached by the session middleware,
// or nil if none is present.
func SessionFromContext(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(ctxKeySession).(*session.Session); ok {
		return sess
	}
	return nil
}
