package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/farmdesk/herdgate/pkg/httpx"
)

// Guard is the edge gate evaluated before any route logic: a pure,
// network-free check deciding whether a request may proceed to a
// protected page or gets bounced to the login page. It never refreshes
// tokens itself; an expired access token is handled by the login flow
// or by the proxy on the next API call.
type Guard struct {
	Protected []string
	Public    []string
	LoginPath string
}

// Decision is the guard verdict: Allow, or a redirect target.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// DefaultGuard covers the dashboard's page tree.
func DefaultGuard() Guard {
	return Guard{
		Protected: []string{
			"/dashboard",
			"/animals",
			"/movements",
			"/reports",
			"/settings",
		},
		Public: []string{
			"/login",
			"/api/",
			"/livez",
			"/readyz",
			"/swagger/",
			"/assets/",
		},
		LoginPath: "/login",
	}
}

// Decide evaluates path against the prefix sets given which credential
// cookies are present. A refresh token alone is not enough to enter a
// protected page; the browser is sent through login.
func (g Guard) Decide(path string, hasAccess, hasRefresh bool) Decision {
	if g.matches(g.Public, path) || !g.matches(g.Protected, path) {
		return Decision{Allow: true}
	}

	if hasAccess {
		return Decision{Allow: true}
	}

	// hasRefresh changes nothing here: with the access token gone the
	// answer is the login page either way.
	target := g.LoginPath
	if path != g.LoginPath {
		target += "?redirect=" + url.QueryEscape(path)
	}
	return Decision{RedirectTo: target}
}

func (g Guard) matches(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// GuardMiddleware wires the guard in front of the router.
func GuardMiddleware(g Guard, store cookies.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasAccess := store.AccessToken(r)
			_, hasRefresh := store.RefreshToken(r)

			decision := g.Decide(r.URL.Path, hasAccess, hasRefresh)
			if !decision.Allow {
				http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
