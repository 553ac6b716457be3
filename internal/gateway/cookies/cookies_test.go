package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStore() Store {
	return New(15*time.Minute, 7*24*time.Hour, true)
}

func TestSetPairWritesBothCookies(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testStore().SetPair(rec, "access-abc", "refresh-def")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access := byName[DefaultAccessName]
	require.NotNil(t, access)
	require.Equal(t, "access-abc", access.Value)
	require.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	refresh := byName[DefaultRefreshName]
	require.NotNil(t, refresh)
	require.Equal(t, "refresh-def", refresh.Value)
	require.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)

	for _, c := range cookies {
		require.Equal(t, "/", c.Path)
		require.True(t, c.HttpOnly)
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}
}

func TestClearExpiresBothCookies(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testStore().Clear(rec)

	headers := rec.Header().Values("Set-Cookie")
	require.Len(t, headers, 2)
	for _, h := range headers {
		require.Contains(t, h, "Max-Age=0")
	}

	for _, c := range rec.Result().Cookies() {
		require.Empty(t, c.Value)
	}
}

func TestReadRoundTripsPercentEncodedValues(t *testing.T) {
	t.Parallel()

	store := testStore()

	rec := httptest.NewRecorder()
	store.SetPair(rec, "token with spaces+symbols=", "plain-token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	access, ok := store.AccessToken(req)
	require.True(t, ok)
	require.Equal(t, "token with spaces+symbols=", access)

	refresh, ok := store.RefreshToken(req)
	require.True(t, ok)
	require.Equal(t, "plain-token", refresh)
}

func TestReadAbsentCookie(t *testing.T) {
	t.Parallel()

	store := testStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := store.AccessToken(req)
	require.False(t, ok)
	_, ok = store.RefreshToken(req)
	require.False(t, ok)
}

func TestReadTreatsEmptyValueAsAbsent(t *testing.T) {
	t.Parallel()

	store := testStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultAccessName, Value: ""})

	_, ok := store.AccessToken(req)
	require.False(t, ok)
}
