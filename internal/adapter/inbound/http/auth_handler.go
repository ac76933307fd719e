package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/doc-gate/docgate/internal/service"
)

// maxLoginBodySize caps the login request body (64 KB is far beyond any
// sane credential pair).
const maxLoginBodySize = 64 << 10

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler serves the session auth endpoints:
//
//	POST /auth/login   {username, password} -> {username, authenticated, profile?}
//	GET  /auth/logout  clears the session
//	GET  /auth/status  reports session state without contacting the backend
//
// The password is never echoed back and never logged.
type AuthHandler struct {
	auth     *service.AuthService
	metrics  *Metrics // optional
	validate *validator.Validate
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, metrics *Metrics) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	logger := LoggerFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBodySize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_request", "failed to read request body")
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_request", "username and password are required")
		return
	}

	sessionID := SessionIDFromContext(r.Context())
	state, err := h.auth.Login(r.Context(), sessionID, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBackendUnavailable) {
			// Reported to the client as plain non-authentication: outages
			// and bad credentials are indistinguishable at the API surface.
			logger.Error("login failed: backend unavailable", "username", req.Username, "error", err)
		} else {
			logger.Error("login failed", "username", req.Username, "error", err)
		}
	}

	h.recordLogin(state.Authenticated)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		LoggerFromContext(r.Context()).Error("logout failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "logout failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"authenticated":false}` + "\n"))
}

// Status handles GET /auth/status.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())
	state, err := h.auth.Status(r.Context(), sessionID)
	if err != nil {
		LoggerFromContext(r.Context()).Error("status query failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "status query failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

func (h *AuthHandler) recordLogin(authenticated bool) {
	if h.metrics == nil {
		return
	}
	result := "failure"
	if authenticated {
		result = "success"
	}
	h.metrics.LoginsTotal.WithLabelValues(result).Inc()
}
