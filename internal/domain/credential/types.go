// Package credential contains the domain types for session-scoped credentials.
package credential

import (
	"encoding/json"
	"time"
)

// Credential is the capability object carrying a user's backend credentials.
// It is captured once at login, replaced wholesale by a later login, and is
// never logged or serialized.
type Credential struct {
	// Username identifies the backend principal.
	Username string `json:"-"`
	// Secret is the opaque password or token used for transport-level auth.
	Secret string `json:"-"`
}

// Entry associates a Credential with the auth state derived at login time.
// Exactly one Entry exists per session at any time.
type Entry struct {
	// Credential is the verified credential for this session.
	Credential Credential
	// Profile is the user's profile document fetched at login, if any.
	Profile json.RawMessage
	// CreatedAt is when the entry was stored (UTC).
	CreatedAt time.Time
	// LastAccess is the last time the entry was read (UTC).
	LastAccess time.Time
}

// AuthState is the session's authentication state as reported to callers.
// It never carries the secret.
type AuthState struct {
	Username      string          `json:"username,omitempty"`
	Authenticated bool            `json:"authenticated"`
	Profile       json.RawMessage `json:"profile,omitempty"`
}

// Anonymous is the auth state of a session with no stored credential.
func Anonymous() AuthState {
	return AuthState{Authenticated: false}
}
