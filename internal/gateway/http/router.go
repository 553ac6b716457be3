package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/farmdesk/herdgate/internal/gateway/service"
	"github.com/farmdesk/herdgate/pkg/httpx"
	"github.com/farmdesk/herdgate/pkg/slogx"

	_ "github.com/farmdesk/herdgate/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookieStore  cookies.Store
	guard        Guard
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Gateway *service.Gateway
	Auth    *service.AuthClient
}

func NewRouter(
	store cookies.Store,
	guard Guard,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		cookieStore:  store,
		guard:        guard,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Request logging first, then the edge gate: the guard runs before
	// any route logic but its redirects still get logged.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		GuardMiddleware(r.guard, r.cookieStore),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerProxy()
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Herdgate API
//	@version		0.1.0
//	@description	Browser-facing gateway for the livestock registration dashboard.
//	@description	Proxies the upstream headless CMS, holding the access/refresh token pair
//	@description	in http-only cookies and rotating it transparently when the access token expires.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerProxy() {
	h := &ProxyHandler{Gateway: r.Gateway, Cookies: r.cookieStore}

	// The data plane: dashboards fire bursts of list/detail calls, so
	// this gets the public profile. Registered as a subtree so the
	// remainder of the path reaches the upstream un-reencoded.
	r.Mux.Handle(ProxyPrefix+"/",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{Auth: r.Auth, Cookies: r.cookieStore}

	// POST /api/auth/login - strict rate limit by IP (brute force prevention)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	logout := &LogoutHandler{Auth: r.Auth, Cookies: r.cookieStore}
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	session := &SessionHandler{Cookies: r.cookieStore}
	r.Mux.Handle("GET /api/session",
		httpx.Chain(session,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.Auth),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
