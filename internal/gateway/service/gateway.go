package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/farmdesk/herdgate/pkg/httpx"
	"github.com/farmdesk/herdgate/pkg/slogx"
)

// DefaultMaxReplayBody bounds how much of a request body the gateway
// buffers to keep it replayable for the post-refresh retry. Larger
// bodies stream through unbuffered and skip the retry instead of
// holding arbitrarily large uploads in memory.
const DefaultMaxReplayBody = 1 << 20

// Credentials are the request-scoped tokens read off the browser's cookies.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Outcome is what the proxy handler writes back to the browser.
type Outcome struct {
	Status int
	Header http.Header // already filtered
	Body   []byte

	// Rotated carries the new pair when a refresh happened; the handler
	// must attach its cookies even if the retried status is an error.
	Rotated *TokenPair

	// SessionExpired marks the forced-logout terminal state: respond
	// 401 with clearing cookies.
	SessionExpired bool
}

// Gateway drives one inbound request through forward, refresh and
// retry. The flow is strictly sequential and performs at most one
// refresh: the retry path cannot re-enter the refresh state, so a 401
// surviving the retry reaches the client untouched.
type Gateway struct {
	Forwarder *Forwarder
	Auth      *AuthClient

	// MaxReplayBody overrides DefaultMaxReplayBody when positive.
	MaxReplayBody int64
}

// Execute runs the forward/refresh/retry state machine. A non-nil error
// means an upstream transport failure; the returned Outcome may still be
// non-nil alongside it so an already-performed rotation is not lost.
func (g *Gateway) Execute(
	ctx context.Context,
	in *http.Request,
	path string,
	creds Credentials,
) (*Outcome, error) {
	log := slogx.FromContext(ctx)

	body, replay := g.outboundBody(in)

	first, err := g.Forwarder.Forward(ctx, in, path, body, creds.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("forward %s %s: %w", in.Method, path, err)
	}

	if first.Status != http.StatusUnauthorized {
		return passthrough(first, nil), nil
	}

	if creds.RefreshToken == "" {
		return &Outcome{SessionExpired: true}, nil
	}

	pair, err := g.Auth.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		log.Info("token refresh failed, forcing logout", "err", err)
		return &Outcome{SessionExpired: true}, nil
	}

	if replay == nil {
		// The body streamed out with the first attempt and cannot be
		// replayed; surface the 401 but keep the rotated credentials so
		// the client can simply retry.
		log.Warn("request body too large to replay after refresh", "path", path)
		return passthrough(first, pair), nil
	}

	second, err := g.Forwarder.Forward(ctx, in, path, replay(), pair.AccessToken)
	if err != nil {
		return &Outcome{Rotated: pair}, fmt.Errorf("retry %s %s: %w", in.Method, path, err)
	}

	return passthrough(second, pair), nil
}

// outboundBody prepares the body for the first forward. It returns the
// reader for the first attempt and a replay factory for the retry; the
// factory is nil when the body exceeds the buffer bound and therefore
// must not be replayed.
func (g *Gateway) outboundBody(in *http.Request) (io.Reader, func() io.Reader) {
	if in.Method == http.MethodGet || in.Method == http.MethodHead || in.Body == nil {
		return nil, func() io.Reader { return nil }
	}

	limit := g.MaxReplayBody
	if limit <= 0 {
		limit = DefaultMaxReplayBody
	}

	buf := make([]byte, 0, 512)
	tmp := make([]byte, 32*1024)
	for int64(len(buf)) <= limit {
		n, err := in.Body.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			return bytes.NewReader(buf), func() io.Reader { return bytes.NewReader(buf) }
		}
	}

	// Over the bound: stream the buffered prefix plus the rest, once.
	return io.MultiReader(bytes.NewReader(buf), in.Body), nil
}

func passthrough(resp *UpstreamResponse, rotated *TokenPair) *Outcome {
	out := &Outcome{
		Status:  resp.Status,
		Header:  httpx.FilterUpstreamHeaders(resp.Header),
		Rotated: rotated,
	}

	// A 204 or genuinely empty body stays bodyless so the client never
	// sees a zero-length body with a stale Content-Length.
	if resp.Status != http.StatusNoContent && len(resp.Body) > 0 {
		out.Body = resp.Body
	}

	return out
}
