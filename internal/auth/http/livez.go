package http

import (
	"net/http"
	"time"

	"github.com/qmiks/rolegate/pkg/httpx"
)

type livezResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// LivezHandler reports process liveness.
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, livezResponse{
			Status:        "ok",
			Version:       version,
			UptimeSeconds: int64(time.Since(startTime).Seconds()),
		})
	})
}
