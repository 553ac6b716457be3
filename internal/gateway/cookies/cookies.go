// Package cookies owns the two http-only credential cookies the gateway
// maintains for the browser. The Store is a pure value: reads come off
// the inbound request, writes are Set-Cookie headers on the outgoing
// response, and nothing here touches process-wide state.
package cookies

import (
	"net/http"
	"net/url"
	"time"
)

// Default cookie names follow the upstream CMS convention so a locally
// running Directus instance and the gateway agree on what to clear.
const (
	DefaultAccessName  = "directus_access_token"
	DefaultRefreshName = "directus_refresh_token"
)

// Store reads and writes the access/refresh token cookie pair.
type Store struct {
	AccessName  string
	RefreshName string

	AccessMaxAge  time.Duration // short: access tokens live minutes
	RefreshMaxAge time.Duration // long: refresh tokens live days

	// Secure marks the cookies Secure; enabled outside dev environments.
	Secure bool
}

// New returns a Store with the default cookie names.
func New(accessMaxAge, refreshMaxAge time.Duration, secure bool) Store {
	return Store{
		AccessName:    DefaultAccessName,
		RefreshName:   DefaultRefreshName,
		AccessMaxAge:  accessMaxAge,
		RefreshMaxAge: refreshMaxAge,
		Secure:        secure,
	}
}

// AccessToken reads the access token cookie. Absence is not an error.
func (s Store) AccessToken(r *http.Request) (string, bool) {
	return s.read(r, s.AccessName)
}

// RefreshToken reads the refresh token cookie. Absence is not an error.
func (s Store) RefreshToken(r *http.Request) (string, bool) {
	return s.read(r, s.RefreshName)
}

func (s Store) read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}

	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		// Tolerate a value written by something other than this gateway.
		return c.Value, true
	}
	return value, true
}

// SetPair attaches Set-Cookie headers for a rotated token pair. Both
// cookies are written together; callers must never persist one half of
// a rotation.
func (s Store) SetPair(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, s.cookie(s.AccessName, accessToken, s.AccessMaxAge))
	http.SetCookie(w, s.cookie(s.RefreshName, refreshToken, s.RefreshMaxAge))
}

// Clear attaches Set-Cookie headers that expire both credential cookies
// immediately (Max-Age=0 with matching attributes).
func (s Store) Clear(w http.ResponseWriter) {
	access := s.cookie(s.AccessName, "", 0)
	access.MaxAge = -1
	refresh := s.cookie(s.RefreshName, "", 0)
	refresh.MaxAge = -1

	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
}

func (s Store) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   s.Secure,
	}
}
