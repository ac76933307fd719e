// Package audit contains domain types for gateway audit logging.
package audit

import "time"

// EventType constants categorize gateway audit records.
const (
	// EventTypeLogin records a successful login.
	EventTypeLogin = "access.login"
	// EventTypeLoginFailed records a rejected or failed login attempt.
	EventTypeLoginFailed = "access.login_failed"
	// EventTypeLogout records an explicit logout.
	EventTypeLogout = "access.logout"
	// EventTypeProxyError records an upstream failure during proxying.
	EventTypeProxyError = "proxy.upstream_error"
)

// Record is a single audit event. It never carries credentials: the session
// is identified by a fingerprint, not the raw cookie value.
type Record struct {
	// Timestamp when the event occurred (UTC).
	Timestamp time.Time `json:"timestamp"`
	// EventType categorizes the event (access.*, proxy.*).
	EventType string `json:"event_type"`
	// SessionFP is a fingerprint of the session ID, for correlation without
	// exposing the cookie value.
	SessionFP string `json:"session_fp,omitempty"`
	// Username is the principal involved, when known.
	Username string `json:"username,omitempty"`
	// RequestID correlates the record with request logs.
	RequestID string `json:"request_id,omitempty"`
	// Detail is a short human-readable description.
	Detail string `json:"detail,omitempty"`
}
