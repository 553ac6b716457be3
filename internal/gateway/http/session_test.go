package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmdesk/herdgate/internal/gateway/cookies"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSessionHandler(t *testing.T) {
	t.Parallel()

	store := cookies.New(15*time.Minute, 7*24*time.Hour, false)
	h := &SessionHandler{Cookies: store}

	t.Run("no cookie reports unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.Authenticated)
		require.Nil(t, resp.ExpiresAt)
	})

	t.Run("jwt access token reports expiry", func(t *testing.T) {
		exp := time.Now().Add(12 * time.Minute).Truncate(time.Second)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": exp.Unix(),
			"id":  "user-1",
		}).SignedString([]byte("upstream-secret-the-gateway-never-knows"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		req.AddCookie(&http.Cookie{Name: store.AccessName, Value: token})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Authenticated)
		require.NotNil(t, resp.ExpiresAt)
		require.Equal(t, exp.UTC(), resp.ExpiresAt.UTC())
	})

	t.Run("opaque token reports authenticated without expiry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		req.AddCookie(&http.Cookie{Name: store.AccessName, Value: "static-admin-token"})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Authenticated)
		require.Nil(t, resp.ExpiresAt)
	})
}
