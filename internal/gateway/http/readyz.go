package http

import (
	"context"
	"net/http"
	"time"

	"github.com/farmdesk/herdgate/internal/gateway/service"
	"github.com/farmdesk/herdgate/pkg/httpx"
)

const readyzPingTimeout = 3 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks that the upstream CMS answers its ping endpoint; degraded returns 503 with per-check detail.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, auth *service.AuthClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Upstream: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), readyzPingTimeout)
		defer cancel()

		if err := auth.Ping(ctx); err != nil {
			checks.Upstream = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
