package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	httpapi "github.com/farmdesk/herdgate/internal/gateway/http"
	"github.com/farmdesk/herdgate/internal/gateway/service"
	"github.com/farmdesk/herdgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	cookieStore cookies.Store
	auth        *service.AuthClient
	gateway     *service.Gateway

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) *Application {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "herdgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	app.initServices()
	app.initHTTP()

	return app
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"upstream", app.cfg.UpstreamURL,
		"version", BuildVersion,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("gateway stopped")
	return nil
}

// initServices initializes the upstream-facing clients
func (app *Application) initServices() {
	app.cookieStore = cookies.New(
		app.cfg.AccessCookieMaxAge,
		app.cfg.RefreshCookieMaxAge,
		app.cfg.SecureCookies(),
	)

	// One client for both the forwarder and the auth calls; the
	// timeout bounds every upstream round trip the gateway makes.
	client := &http.Client{Timeout: app.cfg.UpstreamTimeout}

	app.auth = &service.AuthClient{
		BaseURL:    app.cfg.UpstreamURL,
		HTTPClient: client,
	}
	app.gateway = &service.Gateway{
		Forwarder: &service.Forwarder{
			BaseURL:    app.cfg.UpstreamURL,
			HTTPClient: client,
		},
		Auth: app.auth,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cookieStore,
		httpapi.DefaultGuard(),
		BuildVersion,
		app.logger,
	)

	router.Gateway = app.gateway
	router.Auth = app.auth
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
