package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qmiks/rolegate/internal/auth/authz"
	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/service"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/qmiks/rolegate/internal/auth/store"
	"github.com/qmiks/rolegate/pkg/httpx"
	"github.com/qmiks/rolegate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers. It is the thin
// collaborator surface over the auth core: each session maps to one
// connected client, and protected routes re-check roles on every request.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	logger       *slog.Logger
	buildVersion string
	startTime    time.Time

	store    store.Store
	Sessions *session.Manager

	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	st store.Store,
	sessions *session.Manager,
	logger *slog.Logger,
	buildVersion string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		logger:       logger,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		Sessions:     sessions,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		SessionMiddleware(r.Sessions),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	// Gates read the role from the store on every request, so role changes
	// apply to live sessions without a re-login.
	userGate := authz.RequireRoles(r.store, domain.RoleUser, domain.RoleAdmin)
	adminGate := authz.RequireRoles(r.store, domain.RoleAdmin)

	// Credential-bearing endpoints get the strict limit (brute force
	// prevention at the transport boundary; the core itself does not rate
	// limit).
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(&LogoutHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/session",
		httpx.Chain(&WhoamiHandler{},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/password",
		httpx.Chain(&PasswordHandler{AuthService: r.AuthService},
			requireGate(userGate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	users := &UsersHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(users.HandleList),
			requireGate(adminGate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/users/{username}/role",
		httpx.Chain(http.HandlerFunc(users.HandleSetRole),
			requireGate(adminGate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
