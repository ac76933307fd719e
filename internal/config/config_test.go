package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a minimal config that passes validation after defaults.
func validConfig() *Config {
	cfg := &Config{
		Backend: BackendConfig{Host: "localhost", Port: 8040},
	}
	cfg.SetDefaults()
	return cfg
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()

	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Gateway.ProtectedPrefix != "/v1/" {
		t.Errorf("ProtectedPrefix = %q, want /v1/", cfg.Gateway.ProtectedPrefix)
	}
	if cfg.Gateway.SPAPage != "index.html" {
		t.Errorf("SPAPage = %q, want index.html", cfg.Gateway.SPAPage)
	}
	if cfg.Backend.Namespace != "api" {
		t.Errorf("Namespace = %q, want api", cfg.Backend.Namespace)
	}
	if cfg.Audit.Output != "stdout" {
		t.Errorf("Audit.Output = %q, want stdout", cfg.Audit.Output)
	}
}

func TestSetDefaults_DevModeForcesDebug(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Backend: BackendConfig{Host: "localhost", Port: 8040},
		Server:  ServerConfig{LogLevel: "warn"},
		DevMode: true,
	}
	cfg.SetDefaults()

	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug in dev mode", cfg.Server.LogLevel)
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing backend host",
			mutate:  func(c *Config) { c.Backend.Host = "" },
			wantSub: "Backend.Host",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Backend.Port = 70000 },
			wantSub: "Backend.Port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Server.LogLevel = "verbose" },
			wantSub: "must be one of",
		},
		{
			name:    "bad listen address",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "not an address" },
			wantSub: "host:port",
		},
		{
			name:    "prefix without trailing slash",
			mutate:  func(c *Config) { c.Gateway.ProtectedPrefix = "/v1" },
			wantSub: "protected_prefix",
		},
		{
			name:    "root prefix",
			mutate:  func(c *Config) { c.Gateway.ProtectedPrefix = "/" },
			wantSub: "shadow",
		},
		{
			name:    "bad session timeout",
			mutate:  func(c *Config) { c.Server.SessionTimeout = "soon" },
			wantSub: "session_timeout",
		},
		{
			name:    "bad audit output",
			mutate:  func(c *Config) { c.Audit.Output = "file://relative/path" },
			wantSub: "Audit.Output",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Server.SessionTimeout = "1h"
	cfg.Backend.HTTPTimeout = "5s"

	if got := cfg.SessionTimeoutDuration(); got != time.Hour {
		t.Errorf("SessionTimeoutDuration() = %v, want 1h", got)
	}
	if got := cfg.BackendTimeoutDuration(); got != 5*time.Second {
		t.Errorf("BackendTimeoutDuration() = %v, want 5s", got)
	}

	// Unparseable values fall back rather than panic.
	cfg.Server.SessionTimeout = "bogus"
	if got := cfg.SessionTimeoutDuration(); got != 30*time.Minute {
		t.Errorf("SessionTimeoutDuration() fallback = %v, want 30m", got)
	}
}
