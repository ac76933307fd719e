package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/doc-gate/docgate/internal/adapter/outbound/backend"
	"github.com/doc-gate/docgate/internal/domain/audit"
	"github.com/doc-gate/docgate/internal/domain/credential"
	"github.com/doc-gate/docgate/internal/domain/user"
)

// ErrBackendUnavailable indicates the backend could not be reached during
// login verification. It is logged server-side; the client only ever sees
// authenticated=false, so outages are indistinguishable from bad credentials
// at the API surface.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Verifier validates a credential against the backend.
// Implemented by backend.Client.
type Verifier interface {
	VerifyLogin(ctx context.Context, cred credential.Credential) (*backend.VerifyResult, error)
}

// AuthService orchestrates login, logout and status queries for a session.
//
// Per-session state machine: Anonymous -> Pending-Verification ->
// {Authenticated | Anonymous}. Verification happens against the backend; the
// gateway stores no secrets of its own.
type AuthService struct {
	store    credential.Store
	verifier Verifier
	audit    *AuditService // optional
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. The audit service may be nil.
func NewAuthService(store credential.Store, verifier Verifier, auditSvc *AuditService, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:    store,
		verifier: verifier,
		audit:    auditSvc,
		logger:   logger,
	}
}

// Login verifies the credential against the backend and, on success, caches
// it for the session. A 200 from the backend yields an authenticated state
// with the profile extracted from the body's nested "user" field; a 404 means
// the credential is valid but no profile document exists. Any other status,
// a malformed profile document, or a transport failure leaves the store
// untouched: a failed re-login never silently logs the user out.
//
// The returned state never contains the secret.
func (s *AuthService) Login(ctx context.Context, sessionID, username, secret string) (credential.AuthState, error) {
	cred := credential.Credential{Username: username, Secret: secret}

	result, err := s.verifier.VerifyLogin(ctx, cred)
	if err != nil {
		s.logger.Warn("login verification transport failure", "username", username, "error", err)
		s.recordAudit(audit.EventTypeLoginFailed, sessionID, username, "backend unavailable")
		return credential.Anonymous(), fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	var profile []byte
	switch result.StatusCode {
	case http.StatusOK:
		profile, err = user.ExtractProfile(result.Body)
		if err != nil {
			// Fail closed on an unparseable profile document.
			s.logger.Warn("login rejected: malformed profile document", "username", username)
			s.recordAudit(audit.EventTypeLoginFailed, sessionID, username, "malformed profile document")
			return credential.Anonymous(), nil
		}
	case http.StatusNotFound:
		// Transport auth succeeded but no profile document exists.
		profile = nil
	default:
		s.logger.Info("login rejected by backend", "username", username, "status", result.StatusCode)
		s.recordAudit(audit.EventTypeLoginFailed, sessionID, username, fmt.Sprintf("backend status %d", result.StatusCode))
		return credential.Anonymous(), nil
	}

	// A cancelled login must not commit a partial store update.
	if err := ctx.Err(); err != nil {
		return credential.Anonymous(), err
	}

	entry := &credential.Entry{
		Credential: cred,
		Profile:    profile,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Put(ctx, sessionID, entry); err != nil {
		return credential.Anonymous(), fmt.Errorf("store credential: %w", err)
	}

	s.recordAudit(audit.EventTypeLogin, sessionID, username, "")
	return credential.AuthState{
		Username:      username,
		Authenticated: true,
		Profile:       profile,
	}, nil
}

// Logout unconditionally clears the session's credential entry.
// Always succeeds; logging out an anonymous session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.recordAudit(audit.EventTypeLogout, sessionID, "", "")
	return nil
}

// Status reports the session's auth state from the store alone; the backend
// is never contacted.
func (s *AuthService) Status(ctx context.Context, sessionID string) (credential.AuthState, error) {
	entry, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, credential.ErrNoSession) {
			return credential.Anonymous(), nil
		}
		return credential.Anonymous(), fmt.Errorf("read session: %w", err)
	}
	return credential.AuthState{
		Username:      entry.Credential.Username,
		Authenticated: true,
		Profile:       entry.Profile,
	}, nil
}

// Credential returns the session's cached credential for outbound calls.
// Returns credential.ErrNoSession for anonymous sessions.
func (s *AuthService) Credential(ctx context.Context, sessionID string) (credential.Credential, error) {
	entry, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return credential.Credential{}, err
	}
	return entry.Credential, nil
}

func (s *AuthService) recordAudit(eventType, sessionID, username, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(audit.Record{
		EventType: eventType,
		SessionFP: SessionFingerprint(sessionID),
		Username:  username,
		Detail:    detail,
	})
}
