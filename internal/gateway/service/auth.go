package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNoRefreshToken     = errors.New("no_refresh_token")
	ErrRefreshRejected    = errors.New("refresh_rejected")
)

// TokenPair is a freshly issued access/refresh token pair. Refresh
// tokens are single-use: every successful refresh rotates both halves
// together, so a pair is only ever handed out whole.
type TokenPair struct {
	AccessToken  string
	RefreshToken string

	// Expires is the access token lifetime reported by the upstream.
	Expires time.Duration
}

// AuthClient talks to the upstream CMS auth endpoints. It requests
// JSON-mode tokens so credentials arrive in the response body instead of
// upstream-set cookies, leaving cookie writes entirely to the gateway.
type AuthClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Collapses concurrent refreshes of the same (single-use) refresh
	// token so racing 401s share one rotation.
	group singleflight.Group
}

// tokenEnvelope mirrors the upstream response shape
// {"data": {"access_token": ..., "refresh_token": ..., "expires": ms}}.
type tokenEnvelope struct {
	Data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Expires      int64  `json:"expires"`
	} `json:"data"`
}

// Login exchanges credentials for a token pair via POST {base}/auth/login.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
		"mode":     "json",
	}

	pair, status, err := c.requestTokens(ctx, "/auth/login", payload)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return pair, nil
}

// Refresh rotates a refresh token into a new pair via POST
// {base}/auth/refresh. An empty token fails without a network call.
// Failures are total: callers never receive half a pair.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	v, err, _ := c.group.Do(refreshToken, func() (any, error) {
		payload := map[string]string{
			"refresh_token": refreshToken,
			"mode":          "json",
		}

		pair, _, err := c.requestTokens(ctx, "/auth/refresh", payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRefreshRejected, err)
		}
		return pair, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*TokenPair), nil
}

// Logout invalidates the refresh token upstream. Best-effort: the
// gateway clears its cookies regardless of the outcome.
func (c *AuthClient) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/auth/logout",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("logout failed with status %d", resp.StatusCode)
	}
	return nil
}

// Ping checks upstream reachability via GET {base}/server/ping.
func (c *AuthClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/server/ping", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upstream ping returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *AuthClient) requestTokens(
	ctx context.Context,
	path string,
	payload map[string]string,
) (*TokenPair, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain for connection reuse; the body is upstream detail the
		// browser never sees.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var envelope tokenEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode token response: %w", err)
	}

	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken == "" {
		return nil, resp.StatusCode, errors.New("token response missing access or refresh token")
	}

	return &TokenPair{
		AccessToken:  envelope.Data.AccessToken,
		RefreshToken: envelope.Data.RefreshToken,
		Expires:      time.Duration(envelope.Data.Expires) * time.Millisecond,
	}, resp.StatusCode, nil
}
