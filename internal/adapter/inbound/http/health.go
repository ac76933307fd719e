package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/doc-gate/docgate/internal/adapter/outbound/memory"
	"github.com/doc-gate/docgate/internal/service"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// HealthChecker verifies component health.
type HealthChecker struct {
	credStore    *memory.CredentialStore
	auditService *service.AuditService
	version      string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(credStore *memory.CredentialStore, auditService *service.AuditService, version string) *HealthChecker {
	return &HealthChecker{
		credStore:    credStore,
		auditService: auditService,
		version:      version,
	}
}

// Check performs health checks on all components.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.credStore != nil {
		// Size() acquires the store lock - if this hangs, we have a problem
		_ = h.credStore.Size()
		checks["credential_store"] = "ok"
	} else {
		checks["credential_store"] = "not configured"
	}

	if h.auditService != nil {
		depth := h.auditService.ChannelDepth()
		capacity := h.auditService.ChannelCapacity()
		if capacity > 0 && depth*100/capacity >= 90 {
			checks["audit"] = fmt.Sprintf("backlogged: %d/%d", depth, capacity)
			healthy = false
		} else {
			checks["audit"] = "ok"
		}
	} else {
		checks["audit"] = "not configured"
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return HealthResponse{Status: status, Checks: checks, Version: h.version}
}

// Handler returns the /health HTTP handler.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
}
