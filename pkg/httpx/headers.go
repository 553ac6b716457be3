package httpx

import "net/http"

// strippedHeaders are never copied from an upstream response to the
// browser. Set-Cookie must only ever be written deliberately by the
// gateway itself; the encoding/length headers describe a wire format the
// buffered body no longer has, so the serialization layer recomputes them.
var strippedHeaders = map[string]struct{}{
	"Set-Cookie":        {},
	"Transfer-Encoding": {},
	"Content-Encoding":  {},
	"Content-Length":    {},
}

// FilterUpstreamHeaders returns a copy of h without hop-specific and
// cookie headers. Matching is case-insensitive and the filter is a pure
// projection: applying it twice yields the same result as once.
func FilterUpstreamHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		if _, drop := strippedHeaders[http.CanonicalHeaderKey(name)]; drop {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	return out
}
