package http

import (
	"net/http"
	"time"

	"github.com/farmdesk/herdgate/pkg/httpx"
)

// HealthResponse is the body of both health probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness detail.
type HealthChecks struct {
	Upstream string `json:"upstream"`
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns basic service health, uptime and version; always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
