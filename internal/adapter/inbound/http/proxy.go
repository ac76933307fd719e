package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/doc-gate/docgate/internal/adapter/outbound/backend"
	"github.com/doc-gate/docgate/internal/domain/audit"
	"github.com/doc-gate/docgate/internal/domain/credential"
	"github.com/doc-gate/docgate/internal/service"
)

// bodylessMethods are forwarded without reading the inbound body.
var bodylessMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodHead:   {},
	http.MethodDelete: {},
	http.MethodTrace:  {},
}

// ProxyEngine forwards requests under the protected prefix to the backend
// with the session's cached credential attached, and mirrors the backend's
// response back to the caller.
//
// The request body is fully buffered before forwarding (it must be read once
// and retransmitted), so proxy memory grows with request size. The response
// body is streamed.
type ProxyEngine struct {
	backend *backend.Client
	creds   credential.Store
	metrics *Metrics              // optional
	audit   *service.AuditService // optional
}

// NewProxyEngine creates a ProxyEngine. Metrics and audit may be nil.
func NewProxyEngine(client *backend.Client, creds credential.Store, metrics *Metrics, auditSvc *service.AuditService) *ProxyEngine {
	return &ProxyEngine{
		backend: client,
		creds:   creds,
		metrics: metrics,
		audit:   auditSvc,
	}
}

// ServeHTTP forwards the request to the backend and mirrors the response.
func (p *ProxyEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	outReq, err := p.buildOutboundRequest(r)
	if err != nil {
		logger.Error("failed to build outbound request", "error", err, "path", r.URL.Path)
		writeJSONError(w, http.StatusBadGateway, "gateway_error", "failed to build upstream request")
		return
	}

	// The outbound call shares the inbound context: a client disconnect
	// cancels the backend call promptly.
	resp, err := p.backend.Do(outReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(r.Context().Err(), context.Canceled) {
			// Caller went away; nothing useful can be written.
			logger.Debug("proxy request cancelled by caller", "path", r.URL.Path)
			return
		}
		logger.Error("backend unreachable", "error", err, "method", r.Method, "path", r.URL.Path)
		p.recordUpstreamError(r)
		writeJSONError(w, http.StatusBadGateway, "gateway_error", "upstream unreachable")
		return
	}
	defer resp.Body.Close()

	// Mirror response headers, minus hop-by-hop fields. The Go client has
	// already decoded any chunked framing, so Transfer-Encoding must not be
	// re-emitted.
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	stripHopByHop(w.Header())

	w.WriteHeader(resp.StatusCode)

	// Stream the body as it arrives.
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Debug("error streaming response body", "error", err)
	}
}

// buildOutboundRequest reconstructs the inbound request against the backend
// host, buffering the body for methods that carry one and attaching the
// session's cached credential.
func (p *ProxyEngine) buildOutboundRequest(r *http.Request) (*http.Request, error) {
	logger := LoggerFromContext(r.Context())

	// Outbound URI: backend scheme://host:port + original path + query,
	// unchanged otherwise.
	outURL := p.backend.BaseURL() + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		outURL += "?" + r.URL.RawQuery
	}

	var body io.Reader
	hasBody := false
	if _, bodyless := bodylessMethods[r.Method]; !bodyless {
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
		hasBody = true
	}

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, outURL, body)
	if err != nil {
		return nil, err
	}

	// Two-tier header copy: request headers always travel; content headers
	// only when a body does; hop-by-hop fields are recomputed by the
	// transport. Anything dropped is logged rather than silently discarded.
	for key, values := range r.Header {
		switch classifyHeader(key) {
		case headerRequest:
			outReq.Header[key] = values
		case headerContent:
			if hasBody {
				outReq.Header[key] = values
			} else {
				logger.Debug("dropping content header on bodyless request", "header", key, "method", r.Method)
			}
		case headerHop:
			// Stripped; the transport recomputes framing and auth.
		}
	}

	// Override Host with the backend's configured host:port.
	outReq.Host = p.backend.Host()

	// Standard forwarding headers for the backend's benefit.
	clientIP := ClientIPFromContext(r.Context())
	if clientIP != "" {
		if prior := outReq.Header.Get("X-Forwarded-For"); prior != "" {
			outReq.Header.Set("X-Forwarded-For", prior+", "+clientIP)
		} else {
			outReq.Header.Set("X-Forwarded-For", clientIP)
		}
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	outReq.Header.Set("X-Forwarded-Proto", scheme)
	outReq.Header.Set("X-Forwarded-Host", r.Host)

	// Attach the session's cached credential. An anonymous session is
	// forwarded unauthenticated: the backend's own 401/403 is mirrored back
	// rather than pre-empted here.
	sessionID := SessionIDFromContext(r.Context())
	entry, err := p.creds.Get(r.Context(), sessionID)
	if err == nil {
		outReq.SetBasicAuth(entry.Credential.Username, entry.Credential.Secret)
	} else if !errors.Is(err, credential.ErrNoSession) {
		return nil, err
	}

	return outReq, nil
}

func (p *ProxyEngine) recordUpstreamError(r *http.Request) {
	if p.metrics != nil {
		p.metrics.ProxyUpstreamErrors.Inc()
	}
	if p.audit != nil {
		p.audit.Record(audit.Record{
			EventType: audit.EventTypeProxyError,
			SessionFP: service.SessionFingerprint(SessionIDFromContext(r.Context())),
			RequestID: RequestIDFromContext(r.Context()),
			Detail:    r.Method + " " + r.URL.Path,
		})
	}
}
