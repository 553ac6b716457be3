package http

import (
	"net/http"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/farmdesk/herdgate/internal/gateway/service"
	"github.com/farmdesk/herdgate/pkg/httpx"
	"github.com/farmdesk/herdgate/pkg/slogx"
)

// LogoutHandler serves POST /api/auth/logout. Upstream invalidation is
// best-effort; the cookies are cleared no matter what.
type LogoutHandler struct {
	Auth    *service.AuthClient
	Cookies cookies.Store
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Invalidates the refresh token upstream (best-effort) and clears both credential cookies.
//	@Tags			Auth
//	@Success		204	"Session terminated"
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if refreshToken, ok := h.Cookies.RefreshToken(r); ok {
		if err := h.Auth.Logout(ctx, refreshToken); err != nil {
			log.Warn("upstream logout failed", "err", err)
		}
	}

	httpx.NoCache(w)
	h.Cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
