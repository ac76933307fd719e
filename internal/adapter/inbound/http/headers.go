package http

import "net/http"

// headerClass is the outcome of classifying an inbound header for forwarding.
type headerClass int

const (
	// headerRequest headers are copied onto every outbound request.
	headerRequest headerClass = iota
	// headerContent headers describe the body and are only attached when a
	// body is.
	headerContent
	// headerHop headers are hop-by-hop or connection-managed; they are
	// stripped and recomputed by the transport.
	headerHop
)

// hopByHopHeaders are stripped from forwarded requests and mirrored
// responses per RFC 9110 §7.6.1. Transfer-Encoding in particular must never
// be re-emitted: the outbound call already materialized the framing, and
// echoing a chunked marker without chunking would desynchronize the client.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// contentHeaders describe the message body rather than the request.
var contentHeaders = map[string]struct{}{
	"Content-Type":     {},
	"Content-Length":   {},
	"Content-Encoding": {},
	"Content-Language": {},
	"Content-Range":    {},
	"Content-Md5":      {},
}

var hopByHopSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(hopByHopHeaders))
	for _, h := range hopByHopHeaders {
		set[h] = struct{}{}
	}
	return set
}()

// classifyHeader decides how an inbound header is forwarded. The name must
// already be in canonical form (net/http keeps Header keys canonical).
//
// Host and Authorization are treated as hop headers here: Host is overridden
// with the backend's host:port and Authorization is replaced by the session's
// cached credential.
func classifyHeader(name string) headerClass {
	if _, ok := hopByHopSet[name]; ok {
		return headerHop
	}
	if name == "Host" || name == "Authorization" {
		return headerHop
	}
	if _, ok := contentHeaders[name]; ok {
		return headerContent
	}
	return headerRequest
}

// stripHopByHop removes hop-by-hop headers from a header map in place.
func stripHopByHop(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}
