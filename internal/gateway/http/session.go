package http

import (
	"net/http"
	"time"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/farmdesk/herdgate/pkg/httpx"
	"github.com/golang-jwt/jwt/v5"
)

// SessionResponse tells the dashboard whether a session exists and when
// the access token runs out, so it can schedule a re-login prompt.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// SessionHandler serves GET /api/session. It reads the exp claim off
// the access token without verifying the signature: the upstream is the
// sole verifier, this endpoint only reports what the browser holds.
type SessionHandler struct {
	Cookies cookies.Store
}

// ServeHTTP godoc
//
//	@Summary		Session introspection
//	@Description	Reports whether a session cookie is present and the access token expiry. Makes no upstream call.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/api/session [get].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)

	token, ok := h.Cookies.AccessToken(r)
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, SessionResponse{Authenticated: false})
		return
	}

	resp := SessionResponse{Authenticated: true}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			t := exp.Time.UTC()
			resp.ExpiresAt = &t
		}
	}
	// Static (non-JWT) tokens have no readable expiry; authenticated
	// with no expires_at is the honest answer.

	httpx.WriteJSON(w, http.StatusOK, resp)
}
