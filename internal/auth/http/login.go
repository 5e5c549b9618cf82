package http

import (
	"encoding/json"
	"net/http"

	"github.com/qmiks/rolegate/internal/auth/service"
	"github.com/qmiks/rolegate/pkg/httpx"
	"github.com/qmiks/rolegate/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
}

// ServeHTTP authenticates the caller and binds their session to the user on
// success. A bad username and a bad password produce the same response.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}

	sess := SessionFromContext(ctx)
	ok, err := h.AuthService.Login(ctx, sess, req.Username, req.Password)
	if err != nil {
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Login failed.")
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_credentials", "Invalid username or password.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Username:      sess.Username,
		Role:          sess.Role.String(),
	})
}

type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP resets the caller's session to the logged-out state.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.AuthService.Logout(ctx, SessionFromContext(ctx))
	w.WriteHeader(http.StatusNoContent)
}
