package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/service"
	"github.com/qmiks/rolegate/pkg/httpx"
	"github.com/qmiks/rolegate/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

type userInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type listUsersResponse struct {
	Users []userInfo `json:"users"`
}

// HandleList returns every account with its role, sorted by username.
// Digests are never exposed.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list users.")
		return
	}

	resp := listUsersResponse{Users: make([]userInfo, len(users))}
	for i, u := range users {
		resp.Users[i] = userInfo{Username: u.Username, Role: u.Role.String()}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole updates the role of the user named in the path. Changing
// one's own role is refused; an unknown username is a no-op, mirroring the
// store primitive.
func (h *UsersHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	username := r.PathValue("username")

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role", err.Error())
		return
	}

	err = h.UserService.SetRole(ctx, SessionFromContext(ctx), username, role)
	switch {
	case errors.Is(err, service.ErrSelfRoleChange):
		httpx.WriteError(w, http.StatusForbidden,
			"self_role_change", "You cannot change your own role.")
	case err != nil:
		log.Error("failed to set role", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to set role.")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
