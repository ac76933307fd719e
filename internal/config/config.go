// Package config provides configuration types for DocGate.
//
// DocGate is configured from a single YAML file (docgate.yaml) plus
// DOCGATE_-prefixed environment variable overrides. The gateway is a
// single-process, in-memory deployment: sessions live for the process
// lifetime only and nothing is persisted.
package config

import (
	"time"
)

// Config is the top-level configuration for the gateway.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Backend configures the upstream document server.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Gateway configures routing: the protected prefix, static assets
	// and the SPA fallback page.
	Gateway GatewayConfig `yaml:"gateway" mapstructure:"gateway"`

	// Audit configures where audit records are written.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// DevMode enables development features (text logs, debug level).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
// TLS is intentionally absent: terminate it at a fronting load balancer.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:9003").
	// Defaults to "127.0.0.1:9003" (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "info" if empty. DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// SessionTimeout is the idle duration before a session's cached
	// credential is evicted (e.g., "30m", "1h"). Defaults to "30m".
	SessionTimeout string `yaml:"session_timeout" mapstructure:"session_timeout" validate:"omitempty"`
}

// BackendConfig configures the upstream document server the gateway fronts.
type BackendConfig struct {
	// Host is the backend hostname or IP.
	Host string `yaml:"host" mapstructure:"host" validate:"required"`

	// Port is the backend application port.
	Port int `yaml:"port" mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// Namespace is the profile-document namespace: login verification
	// fetches /<namespace>/users/<username>.json. Defaults to "api".
	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// HTTPTimeout bounds each request to the backend (e.g., "30s").
	// Defaults to "30s".
	HTTPTimeout string `yaml:"http_timeout" mapstructure:"http_timeout" validate:"omitempty"`
}

// GatewayConfig configures request routing.
type GatewayConfig struct {
	// ProtectedPrefix is the path prefix forwarded to the backend with the
	// session's credential attached. Defaults to "/v1/".
	ProtectedPrefix string `yaml:"protected_prefix" mapstructure:"protected_prefix"`

	// StaticDir is the directory holding the SPA's built assets.
	// When empty, static serving and the SPA fallback are disabled and
	// non-protected paths return 404.
	StaticDir string `yaml:"static_dir" mapstructure:"static_dir"`

	// SPAPage is the entry page served for extensionless paths outside the
	// protected prefix. Defaults to "index.html".
	SPAPage string `yaml:"spa_page" mapstructure:"spa_page"`
}

// AuditConfig configures where audit records are written.
type AuditConfig struct {
	// Output is "stdout" or "file://<absolute-path>". Defaults to "stdout".
	Output string `yaml:"output" mapstructure:"output" validate:"omitempty,audit_output"`
}

// Default values applied by SetDefaults.
const (
	DefaultHTTPAddr        = "127.0.0.1:9003"
	DefaultLogLevel        = "info"
	DefaultSessionTimeout  = "30m"
	DefaultNamespace       = "api"
	DefaultHTTPTimeout     = "30s"
	DefaultProtectedPrefix = "/v1/"
	DefaultSPAPage         = "index.html"
	DefaultAuditOutput     = "stdout"
)

// SetDefaults fills empty fields with default values.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.DevMode {
		c.Server.LogLevel = "debug"
	}
	if c.Server.SessionTimeout == "" {
		c.Server.SessionTimeout = DefaultSessionTimeout
	}
	if c.Backend.Namespace == "" {
		c.Backend.Namespace = DefaultNamespace
	}
	if c.Backend.HTTPTimeout == "" {
		c.Backend.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Gateway.ProtectedPrefix == "" {
		c.Gateway.ProtectedPrefix = DefaultProtectedPrefix
	}
	if c.Gateway.SPAPage == "" {
		c.Gateway.SPAPage = DefaultSPAPage
	}
	if c.Audit.Output == "" {
		c.Audit.Output = DefaultAuditOutput
	}
}

// SessionTimeoutDuration parses Server.SessionTimeout.
// Call after Validate; an unparseable value falls back to 30 minutes.
func (c *Config) SessionTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.SessionTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// BackendTimeoutDuration parses Backend.HTTPTimeout.
// Call after Validate; an unparseable value falls back to 30 seconds.
func (c *Config) BackendTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Backend.HTTPTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
