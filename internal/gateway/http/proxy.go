package http

import (
	"net/http"
	"strings"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/farmdesk/herdgate/internal/gateway/service"
	"github.com/farmdesk/herdgate/pkg/httpx"
	"github.com/farmdesk/herdgate/pkg/slogx"
)

// ProxyPrefix is stripped from the inbound path; the remainder is the
// upstream path, forwarded as-is.
const ProxyPrefix = "/api/proxy"

var proxyMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// ProxyHandler serves ANY /api/proxy/{path...}: it reads the credential
// cookies, runs the forward/refresh/retry flow and writes the outcome,
// including rotated or clearing Set-Cookie headers.
type ProxyHandler struct {
	Gateway *service.Gateway
	Cookies cookies.Store
}

// ServeHTTP godoc
//
//	@Summary		Authenticated upstream proxy
//	@Description	Forwards the request to the upstream CMS with the browser's access token injected as a bearer credential.
//	@Description	On an upstream 401 the gateway refreshes the token pair once, retries, and rotates the credential cookies.
//	@Tags			Proxy
//	@Param			path	path		string			true	"Upstream path"
//	@Success		200		{object}	any				"Upstream response, passed through"
//	@Failure		401		{object}	httpx.ErrorResponse	"No credentials or session expired"
//	@Failure		502		{object}	httpx.ErrorResponse	"Upstream unavailable"
//	@Router			/api/proxy/{path} [get].
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if _, ok := proxyMethods[r.Method]; !ok {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	accessToken, ok := h.Cookies.AccessToken(r)
	if !ok {
		// No credential, no upstream call.
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	refreshToken, _ := h.Cookies.RefreshToken(r)

	path := strings.TrimPrefix(r.URL.Path, ProxyPrefix)
	if path == "" {
		path = "/"
	}

	outcome, err := h.Gateway.Execute(ctx, r, path, service.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if err != nil {
		// A rotation that already happened upstream must still reach the
		// browser, or it is left holding a consumed refresh token.
		if outcome != nil && outcome.Rotated != nil {
			httpx.NoCache(w)
			h.Cookies.SetPair(w, outcome.Rotated.AccessToken, outcome.Rotated.RefreshToken)
		}
		log.Error("upstream forward failed", "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "Upstream unavailable")
		return
	}

	if outcome.SessionExpired {
		httpx.NoCache(w)
		h.Cookies.Clear(w)
		httpx.WriteError(w, http.StatusUnauthorized, "Session expired. Please log in again.")
		return
	}

	for name, values := range outcome.Header {
		w.Header()[name] = values
	}
	if outcome.Rotated != nil {
		httpx.NoCache(w)
		h.Cookies.SetPair(w, outcome.Rotated.AccessToken, outcome.Rotated.RefreshToken)
	}

	w.WriteHeader(outcome.Status)
	if len(outcome.Body) > 0 {
		_, _ = w.Write(outcome.Body)
	}
}
