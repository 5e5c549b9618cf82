package http

import (
	"encoding/json"
	"net/http"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/service"
	"github.com/qmiks/rolegate/pkg/httpx"
	"github.com/qmiks/rolegate/pkg/slogx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type registerResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ServeHTTP creates a new account. A requested role other than the default
// is honored only for admin sessions; other callers get the default role
// without an error. Duplicate usernames are rejected with 409.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Username and password are required.")
		return
	}

	var requested domain.Role
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_role", err.Error())
			return
		}
		requested = parsed
	}

	sess := SessionFromContext(ctx)
	ok, err := h.AuthService.Register(ctx, sess, req.Username, req.Password, requested)
	if err != nil {
		log.Error("registration failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Registration failed.")
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusConflict,
			"username_taken", "That username already exists.")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		Username: req.Username,
		Role:     service.ResolveRole(sess, requested).String(),
	})
}
