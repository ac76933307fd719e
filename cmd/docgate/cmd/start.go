package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doc-gate/docgate/internal/adapter/inbound/http"
	auditstore "github.com/doc-gate/docgate/internal/adapter/outbound/audit"
	"github.com/doc-gate/docgate/internal/adapter/outbound/backend"
	"github.com/doc-gate/docgate/internal/adapter/outbound/memory"
	"github.com/doc-gate/docgate/internal/config"
	"github.com/doc-gate/docgate/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway",
	Long: `Start the DocGate gateway.

The gateway listens on server.http_addr and dispatches each request once:

  paths under gateway.protected_prefix  -> proxied to the backend with the
                                           session's cached credential
  paths containing a '.'                -> static assets from gateway.static_dir
  everything else                       -> the SPA entry page

Examples:
  # Start with config file settings
  docgate start

  # Start in development mode (text logs, debug level)
  docgate start --dev`,
	RunE: runStart,
}

var devMode bool

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (text logs, debug level)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// Load without validation so the CLI flag can override first.
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Signal context for graceful shutdown. stop() restores default signal
	// handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger := newLogger(cfg)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("docgate stopped")
	return nil
}

// run wires all components together and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	credStore := memory.NewCredentialStore(cfg.SessionTimeoutDuration())
	credStore.StartCleanup(ctx)
	defer credStore.Stop()

	backendClient := backend.NewClient(backend.Config{
		Host:      cfg.Backend.Host,
		Port:      cfg.Backend.Port,
		Namespace: cfg.Backend.Namespace,
		Timeout:   cfg.BackendTimeoutDuration(),
	}, logger)
	logger.Info("backend configured",
		"host", cfg.Backend.Host,
		"port", cfg.Backend.Port,
		"namespace", cfg.Backend.Namespace,
	)

	auditOut, err := auditstore.NewStore(cfg.Audit.Output)
	if err != nil {
		return fmt.Errorf("failed to open audit output: %w", err)
	}
	defer auditOut.Close()

	auditSvc := service.NewAuditService(auditOut, logger)
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	authSvc := service.NewAuthService(credStore, backendClient, auditSvc, logger)

	transport := http.NewTransport(authSvc, backendClient, credStore,
		http.WithAddr(cfg.Server.HTTPAddr),
		http.WithLogger(logger),
		http.WithProtectedPrefix(cfg.Gateway.ProtectedPrefix),
		http.WithStaticSite(cfg.Gateway.StaticDir, cfg.Gateway.SPAPage),
		http.WithAuditService(auditSvc),
		http.WithVersion(Version),
	)

	logger.Info("docgate starting",
		"addr", cfg.Server.HTTPAddr,
		"protected_prefix", cfg.Gateway.ProtectedPrefix,
		"static_dir", cfg.Gateway.StaticDir,
		"session_timeout", cfg.Server.SessionTimeout,
	)
	return transport.Start(ctx)
}

// newLogger builds the process logger. Dev mode uses a human-readable text
// handler; production uses JSON.
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Server.LogLevel)
	var handler slog.Handler
	if cfg.DevMode {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
