package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// UpstreamResponse is one buffered upstream attempt. The body is read
// fully so the orchestrator can inspect the status and replay the
// response to the client after header filtering.
type UpstreamResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Forwarder translates an inbound browser request into an equivalent
// upstream request. It is a pure protocol translator: credential
// injection happens here, response filtering does not.
type Forwarder struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Forward issues the upstream request for path with the given access
// token. The inbound method and query string pass through unchanged;
// body is the outbound payload (nil for bodyless methods). Inbound
// Cookie and Host headers never reach the upstream, and any inbound
// Authorization header is overwritten.
func (f *Forwarder) Forward(
	ctx context.Context,
	in *http.Request,
	path string,
	body io.Reader,
	accessToken string,
) (*UpstreamResponse, error) {
	target := f.BaseURL + path
	if in.URL.RawQuery != "" {
		target += "?" + in.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}

	req.Header = in.Header.Clone()
	req.Header.Del("Host")
	req.Header.Del("Cookie")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	return &UpstreamResponse{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   buf,
	}, nil
}
