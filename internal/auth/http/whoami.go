package http

import (
	"encoding/json"
	"net/http"

	"github.com/qmiks/rolegate/internal/auth/service"
	"github.com/qmiks/rolegate/pkg/httpx"
	"github.com/qmiks/rolegate/pkg/slogx"
)

type WhoamiHandler struct{}

// ServeHTTP reports the caller's current session state. Works for logged-out
// sessions too, so clients can render the right view without a failed call.
func (h *WhoamiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	resp := sessionResponse{}
	if sess != nil && sess.Authenticated {
		resp = sessionResponse{
			Authenticated: true,
			Username:      sess.Username,
			Role:          sess.Role.String(),
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type PasswordHandler struct {
	AuthService *service.AuthService
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ServeHTTP changes the caller's own password after re-verifying the old
// one.
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}
	if req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "New password is required.")
		return
	}

	ok, err := h.AuthService.ChangePassword(ctx, SessionFromContext(ctx), req.OldPassword, req.NewPassword)
	if err != nil {
		log.Error("password change failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Password change failed.")
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusForbidden,
			"invalid_credentials", "Old password does not match.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
