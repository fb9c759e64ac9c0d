package http

import (
	"net/http"
	"time"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/store"
	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
)

// LivezHandler reports ok as long as the process serves requests.
//
//	@Summary		Liveness check
//	@Description	Returns 200 with uptime and version while the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	}
}

// ReadyzHandler additionally checks the account store.
//
//	@Summary		Readiness check
//	@Description	Returns 200 when the account store answers, 503 otherwise.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, version"
//	@Failure		503	{object}	authsdk.HealthResponse	"store unavailable"
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, authsdk.HealthResponse{Status: "unavailable", Version: version})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{Status: "ok", Version: version})
	}
}
