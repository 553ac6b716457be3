package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/farmdesk/herdgate/internal/gateway/service"
	"github.com/farmdesk/herdgate/pkg/httpx"
	"github.com/farmdesk/herdgate/pkg/slogx"
)

// LoginRequest is the browser-facing login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse deliberately carries only the access token lifetime.
// The tokens themselves travel exclusively as http-only cookies.
type LoginResponse struct {
	Data LoginData `json:"data"`
}

type LoginData struct {
	// Expires is the access token lifetime in milliseconds.
	Expires int64 `json:"expires"`
}

// LoginHandler serves POST /api/auth/login.
type LoginHandler struct {
	Auth    *service.AuthClient
	Cookies cookies.Store
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges email/password for a session. Tokens are set as http-only cookies, never returned in the body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		LoginRequest	true	"Login credentials"
//	@Success		200			{object}	LoginResponse	"expires: access token lifetime in ms"
//	@Failure		400			{object}	httpx.ErrorResponse
//	@Failure		401			{object}	httpx.ErrorResponse
//	@Failure		502			{object}	httpx.ErrorResponse
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error("login upstream call failed", "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "Upstream unavailable")
		return
	}

	httpx.NoCache(w)
	h.Cookies.SetPair(w, pair.AccessToken, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Data: LoginData{Expires: pair.Expires.Milliseconds()},
	})
}
