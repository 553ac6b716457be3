package app

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	UpstreamURL string // Required: base URL of the upstream CMS

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	UpstreamTimeout     time.Duration // Timeout for forward and refresh calls (default: 10s)

	AccessCookieMaxAge  time.Duration // Access token cookie lifetime (default: 15m)
	RefreshCookieMaxAge time.Duration // Refresh token cookie lifetime (default: 7d)
}

// LoadConfig reads configuration from the environment. The upstream URL
// is the one setting with no sane default: proxying to an empty base
// would silently break every request, so its absence fails startup.
func LoadConfig() (Config, error) {
	cfg := Config{
		UpstreamURL:         strings.TrimSuffix(os.Getenv("UPSTREAM_URL"), "/"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		UpstreamTimeout:     getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 10*time.Second),
		AccessCookieMaxAge:  getEnvDurationOrDefault("ACCESS_COOKIE_MAX_AGE", 15*time.Minute),
		RefreshCookieMaxAge: getEnvDurationOrDefault("REFRESH_COOKIE_MAX_AGE", 7*24*time.Hour),
	}

	if cfg.UpstreamURL == "" {
		return Config{}, fmt.Errorf("UPSTREAM_URL is required")
	}
	u, err := url.Parse(cfg.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("UPSTREAM_URL %q is not an absolute URL", cfg.UpstreamURL)
	}

	return cfg, nil
}

// SecureCookies reports whether the Secure cookie attribute applies;
// everything that is not local dev runs behind TLS.
func (c Config) SecureCookies() bool {
	return c.Env != "dev"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
